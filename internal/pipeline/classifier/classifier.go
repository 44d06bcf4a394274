// Package classifier maps a recorded action intent to a canonical pipeline
// stage name using an ordered fallback strategy: stage-type match first,
// then bilingual name/keyword match, then no change.
package classifier

import (
	"strings"
	"unicode/utf8"

	"leadflow_backend/internal/pipeline/domain"
)

// Substring matching is skipped for short terms to avoid false positives
// on tokens like "won" or "rent".
const minSubstringTermLength = 4

// Stage names (English or Arabic) that make a follow_up type match preferred.
var followUpPreferredNames = map[string]struct{}{
	"follow up":    {},
	"follow-up":    {},
	"pending":      {},
	"متابعة":       {},
	"قيد الانتظار": {},
}

// Terms marking a stage as an unreachable-contact bucket. A follow_up intent
// avoids these when a better-named type match exists.
var unreachableTerms = []string{
	"no answer",
	"phone off",
	"لا يوجد رد",
	"الهاتف مغلق",
}

// Bilingual synonym expansion per intent. The normalized intent itself is
// always tried before its synonyms.
var intentSynonyms = map[string][]string{
	domain.IntentReservation:  {"reservation", "booking", "won", "closed", "حجز", "مباع"},
	domain.IntentClosingDeals: {"closing", "deal", "closed", "won", "إغلاق", "صفقة"},
	domain.IntentRent:         {"rent", "rental", "rented", "إيجار", "مؤجر"},
	domain.IntentCancel:       {"cancelation", "cancellation", "cancelled", "lost", "archive", "cold calls", "إلغاء", "خسارة", "مكالمات باردة"},
	domain.IntentMeeting:      {"meeting", "appointment", "اجتماع", "مقابلة"},
	domain.IntentProposal:     {"proposal", "offer", "quotation", "عرض", "عرض سعر"},
	domain.IntentFollowUp:     {"follow up", "follow-up", "pending", "متابعة", "قيد الانتظار"},
}

// Classify returns the canonical stage name for the given action intent, or
// domain.StageUnchanged when no confident mapping exists. Definitions must be
// a fresh snapshot; the classifier never caches them.
func Classify(actionIntent string, defs []domain.StageDefinition) string {
	intent := normalize(actionIntent)
	if intent == "" || len(defs) == 0 {
		return domain.StageUnchanged
	}

	if name := classifyByType(intent, defs); name != domain.StageUnchanged {
		return name
	}

	return classifyByName(intent, defs)
}

// classifyByType selects among definitions whose type tag equals the intent.
func classifyByType(intent string, defs []domain.StageDefinition) string {
	matches := make([]domain.StageDefinition, 0, len(defs))
	for _, def := range defs {
		if normalize(def.Type) == intent {
			matches = append(matches, def)
		}
	}
	if len(matches) == 0 {
		return domain.StageUnchanged
	}

	if intent == domain.IntentFollowUp {
		for _, def := range matches {
			if isPreferredFollowUpStage(def) {
				return def.Name
			}
		}
		for _, def := range matches {
			if !mentionsUnreachable(def) {
				return def.Name
			}
		}
	}

	return matches[0].Name
}

// classifyByName tries the intent and its synonyms against stage names:
// exact match first, then substring for terms long enough to be meaningful.
func classifyByName(intent string, defs []domain.StageDefinition) string {
	for _, term := range candidateTerms(intent) {
		for _, def := range defs {
			if normalize(def.Name) == term || normalize(def.NameAr) == term {
				return def.Name
			}
		}

		if utf8.RuneCountInString(term) < minSubstringTermLength {
			continue
		}
		for _, def := range defs {
			if strings.Contains(normalize(def.Name), term) || strings.Contains(normalize(def.NameAr), term) {
				return def.Name
			}
		}
	}

	return domain.StageUnchanged
}

// candidateTerms yields the normalized intent (underscores as spaces)
// followed by its synonym expansion, without duplicates.
func candidateTerms(intent string) []string {
	base := strings.ReplaceAll(intent, "_", " ")

	terms := make([]string, 0, 8)
	seen := map[string]struct{}{}

	add := func(term string) {
		term = normalize(term)
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	add(base)
	for _, synonym := range intentSynonyms[intent] {
		add(synonym)
	}

	return terms
}

func isPreferredFollowUpStage(def domain.StageDefinition) bool {
	if _, ok := followUpPreferredNames[normalize(def.Name)]; ok {
		return true
	}
	_, ok := followUpPreferredNames[normalize(def.NameAr)]
	return ok
}

func mentionsUnreachable(def domain.StageDefinition) bool {
	name := normalize(def.Name)
	nameAr := normalize(def.NameAr)
	for _, term := range unreachableTerms {
		if strings.Contains(name, term) || strings.Contains(nameAr, term) {
			return true
		}
	}
	return false
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
