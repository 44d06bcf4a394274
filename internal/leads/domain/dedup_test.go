package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	idA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	idC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func day(offset int) time.Time {
	return time.Date(2024, time.January, 1+offset, 0, 0, 0, 0, time.UTC)
}

func TestFindOriginalPhoneMatchAcrossSpellings(t *testing.T) {
	// International spelling in the pool, national spelling on the candidate.
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idA, Phone: "+20 100-111-2222", Email: "a@x.com", CreatedAt: day(0)},
	}

	original, found := m.FindOriginal(Candidate{
		Phones: []string{"0100 111 2222"},
		Email:  "b@y.com",
	}, pool, uuid.Nil)

	if !found {
		t.Fatal("expected a phone match")
	}
	if original.ID != idA {
		t.Errorf("original = %s, want %s", original.ID, idA)
	}
}

func TestFindOriginalEmailMatchAlone(t *testing.T) {
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idA, Phone: "+20 100-111-2222", Email: "Lead@Example.com", CreatedAt: day(0)},
	}

	_, found := m.FindOriginal(Candidate{
		Phones: []string{"0111 999 8888"},
		Email:  "  lead@example.com ",
	}, pool, uuid.Nil)

	if !found {
		t.Fatal("expected an email match despite different phones")
	}
}

func TestFindOriginalEmptyEmailsNeverMatch(t *testing.T) {
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idA, Phone: "+20 100-111-2222", Email: "", CreatedAt: day(0)},
	}

	if _, found := m.FindOriginal(Candidate{Phones: []string{"0111 999 8888"}, Email: ""}, pool, uuid.Nil); found {
		t.Error("two empty emails must not be treated as a match")
	}
}

func TestFindOriginalMultiNumberField(t *testing.T) {
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idA, Phone: "+20 100-111-2222 / +20 111-222-3333", CreatedAt: day(0)},
	}

	if _, found := m.FindOriginal(Candidate{Phones: []string{"0111 222 3333"}}, pool, uuid.Nil); !found {
		t.Error("expected a match against the second number of a multi-number field")
	}
}

func TestFindOriginalExcludesSelf(t *testing.T) {
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idA, Phone: "+20 100-111-2222", CreatedAt: day(0)},
	}

	if _, found := m.FindOriginal(Candidate{Phones: []string{"+20 100-111-2222"}}, pool, idA); found {
		t.Error("a lead must never match itself")
	}
}

func TestFindOriginalSelectsEarliestCreated(t *testing.T) {
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idC, Phone: "+20 100-111-2222", CreatedAt: day(5)},
		{ID: idA, Phone: "0100 111 2222", CreatedAt: day(1)},
		{ID: idB, Phone: "+201001112222", CreatedAt: day(3)},
	}

	original, found := m.FindOriginal(Candidate{Phones: []string{"0100 111 2222"}}, pool, uuid.Nil)
	if !found {
		t.Fatal("expected a match")
	}
	if original.ID != idA {
		t.Errorf("original = %s, want earliest-created %s", original.ID, idA)
	}
}

func TestFindOriginalTieKeepsInputOrder(t *testing.T) {
	m := NewMatcher("EG")
	created := day(2)
	pool := []Contact{
		{ID: idB, Phone: "+20 100-111-2222", CreatedAt: created},
		{ID: idA, Phone: "0100 111 2222", CreatedAt: created},
	}

	original, found := m.FindOriginal(Candidate{Phones: []string{"0100 111 2222"}}, pool, uuid.Nil)
	if !found {
		t.Fatal("expected a match")
	}
	if original.ID != idB {
		t.Errorf("original = %s, want first-listed %s on created-at tie", original.ID, idB)
	}
}

func TestFindOriginalMatchIsSymmetric(t *testing.T) {
	m := NewMatcher("EG")
	a := Contact{ID: idA, Phone: "+20 100-111-2222", CreatedAt: day(0)}
	b := Contact{ID: idB, Phone: "0100 111 2222", CreatedAt: day(1)}

	_, abFound := m.FindOriginal(CandidateFromContact(a), []Contact{b}, idA)
	_, baFound := m.FindOriginal(CandidateFromContact(b), []Contact{a}, idB)

	if abFound != baFound {
		t.Errorf("match must be symmetric: a→b=%v, b→a=%v", abFound, baFound)
	}
	if !abFound {
		t.Error("expected the pair to match in both directions")
	}
}

func TestFindOriginalNoMatchIsGenuineNegative(t *testing.T) {
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idA, Phone: "+20 100-111-2222", Email: "a@x.com", CreatedAt: day(0)},
	}

	original, found := m.FindOriginal(Candidate{
		Phones: []string{"0109 000 0000"},
		Email:  "other@y.com",
	}, pool, uuid.Nil)

	if found {
		t.Fatal("expected no match")
	}
	if original.ID != uuid.Nil {
		t.Error("a miss must not fabricate a placeholder original")
	}
}

func TestFindOriginalEmptyCandidateNeverMatches(t *testing.T) {
	m := NewMatcher("EG")
	pool := []Contact{
		{ID: idA, Phone: "", Email: "", CreatedAt: day(0)},
	}

	if _, found := m.FindOriginal(Candidate{}, pool, uuid.Nil); found {
		t.Error("an empty candidate must not match anything")
	}
}
