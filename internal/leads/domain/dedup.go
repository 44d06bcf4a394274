// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"sort"
	"strings"
	"time"

	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

// Contact is the minimal lead view the duplicate matcher operates on.
// Phone is the raw stored field and may hold several numbers joined by "/".
type Contact struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// Candidate carries the phone/email pairs of an incoming or existing lead
// being checked against the pool.
type Candidate struct {
	Phones []string
	Email  string
}

// CandidateFromContact builds a candidate from an existing pool entry,
// splitting its multi-number phone field.
func CandidateFromContact(c Contact) Candidate {
	return Candidate{
		Phones: phone.SplitMulti(c.Phone),
		Email:  c.Email,
	}
}

// Matcher detects duplicates by comparing canonicalized phone numbers and
// normalized email addresses. The same canonicalization rule is applied on
// both sides of every comparison.
type Matcher struct {
	region string
}

// NewMatcher creates a matcher using the given default phone region.
func NewMatcher(region string) *Matcher {
	return &Matcher{region: region}
}

// FindOriginal reports whether the candidate matches any pool entry. A pool
// entry matches when any canonical candidate phone equals any canonical
// phone of the entry, or when both emails are non-empty and equal after
// normalization. Phone and email matches are each sufficient on their own.
//
// The entry identified by excludeID is never considered, so a lead is never
// compared against itself. When several entries match, the earliest-created
// one is returned as the original; ties keep the input order.
//
// A miss is a genuine negative: no placeholder original is ever fabricated.
func (m *Matcher) FindOriginal(candidate Candidate, pool []Contact, excludeID uuid.UUID) (Contact, bool) {
	phones := m.canonicalSet(candidate.Phones)
	email := normalizeEmail(candidate.Email)

	if len(phones) == 0 && email == "" {
		return Contact{}, false
	}

	matches := make([]Contact, 0, 2)
	for _, entry := range pool {
		if entry.ID == excludeID {
			continue
		}
		if m.matches(phones, email, entry) {
			matches = append(matches, entry)
		}
	}
	if len(matches) == 0 {
		return Contact{}, false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches[0], true
}

func (m *Matcher) matches(phones map[string]struct{}, email string, entry Contact) bool {
	for _, raw := range phone.SplitMulti(entry.Phone) {
		canonical := phone.Canonical(raw, m.region)
		if canonical == "" {
			continue
		}
		if _, ok := phones[canonical]; ok {
			return true
		}
	}

	if email != "" {
		if entryEmail := normalizeEmail(entry.Email); entryEmail != "" && entryEmail == email {
			return true
		}
	}

	return false
}

func (m *Matcher) canonicalSet(raws []string) map[string]struct{} {
	set := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		if canonical := phone.Canonical(raw, m.region); canonical != "" {
			set[canonical] = struct{}{}
		}
	}
	return set
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
