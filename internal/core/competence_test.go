package core

import "testing"

func TestGenerateCompetencesMonthly(t *testing.T) {
	got, err := GenerateCompetences(1, 2026, 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Competence{{1, 2026}, {2, 2026}, {3, 2026}}
	if len(got) != len(want) {
		t.Fatalf("expected %d competences, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("competence %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestGenerateCompetencesYearWrap(t *testing.T) {
	// interval 2 starting in November crosses the year boundary mid-advance
	got, err := GenerateCompetences(11, 2026, 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Competence{{11, 2026}, {1, 2027}, {3, 2027}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("competence %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestGenerateCompetencesCount(t *testing.T) {
	got, err := GenerateCompetences(6, 2025, 12, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 competences, got %d", len(got))
	}
	for i, c := range got {
		if c.Month != 6 || c.Year != 2025+i {
			t.Fatalf("competence %d: expected (6, %d), got %v", i, 2025+i, c)
		}
	}
}

func TestGenerateCompetencesValidation(t *testing.T) {
	cases := []struct {
		name         string
		month, year  int
	}{
		{"month zero", 0, 2026},
		{"month thirteen", 13, 2026},
		{"year zero", 1, 0},
		{"negative year", 1, -3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GenerateCompetences(tc.month, tc.year, 1, 3)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestCompetenceNext(t *testing.T) {
	c := Competence{Month: 12, Year: 2026}
	next := c.Next()
	if next.Month != 1 || next.Year != 2027 {
		t.Fatalf("expected (1, 2027), got %v", next)
	}
}
