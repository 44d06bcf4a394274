package service

import "testing"

func TestMapHeaderRecognizesAliases(t *testing.T) {
	columns := MapHeader([]string{"Name", "E-Mail", "Mobile", "Company", "Status", "Assignee", "Comments"})

	want := map[string]int{
		"name":       0,
		"email":      1,
		"phone":      2,
		"company":    3,
		"stage":      4,
		"assignedTo": 5,
		"notes":      6,
	}
	for field, idx := range want {
		if got, ok := columns[field]; !ok || got != idx {
			t.Errorf("columns[%q] = %d (found %v), want %d", field, got, ok, idx)
		}
	}
}

func TestMapHeaderIgnoresUnknownColumns(t *testing.T) {
	columns := MapHeader([]string{"Name", "Budget", "Source"})

	if len(columns) != 1 {
		t.Errorf("columns = %v, want only name", columns)
	}
}

func TestMapHeaderFirstDuplicateWins(t *testing.T) {
	columns := MapHeader([]string{"Phone", "Mobile"})

	if columns["phone"] != 0 {
		t.Errorf("phone column = %d, want the first occurrence 0", columns["phone"])
	}
}

func TestRowToRequestTrimsCells(t *testing.T) {
	columns := MapHeader([]string{"Name", "Phone", "Stage"})

	req, ok := RowToRequest(columns, []string{"  Ahmed ", " 0100 111 2222 ", "New"})
	if !ok {
		t.Fatal("expected a usable row")
	}
	if req.Name != "Ahmed" {
		t.Errorf("name = %q, want trimmed Ahmed", req.Name)
	}
	if req.Phone != "0100 111 2222" {
		t.Errorf("phone = %q", req.Phone)
	}
}

func TestRowToRequestShortRowIsSafe(t *testing.T) {
	columns := MapHeader([]string{"Name", "Email", "Phone"})

	req, ok := RowToRequest(columns, []string{"Ahmed"})
	if !ok {
		t.Fatal("expected a usable row")
	}
	if req.Email != "" || req.Phone != "" {
		t.Error("missing trailing cells must read as empty")
	}
}

func TestRowToRequestBlankRowDropped(t *testing.T) {
	columns := MapHeader([]string{"Name", "Email", "Phone", "Company"})

	if _, ok := RowToRequest(columns, []string{"", " ", "", ""}); ok {
		t.Error("a fully blank row must be dropped, not imported")
	}
}
