package category

import "testing"

func testCategory() Category {
	return New("animals", map[string][]string{
		"Horse":    {"hoarse"},
		"elephant": {"elefant"},
		"cat":      nil,
		"dog":      nil,
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Horse ", "horse"},
		{"ELEPHANT", "elephant"},
		{"", ""},
		{"   ", ""},
		{"Straße", "strasse"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCorrect(t *testing.T) {
	cat := testCategory()
	distances := DefaultDistanceTable()

	tests := []struct {
		name   string
		word   string
		want   string
		wantOK bool
	}{
		{"exact canonical", "horse", "horse", true},
		{"exact canonical mixed case", "HORSE", "horse", true},
		{"known alias maps to canonical", "hoarse", "horse", true},
		{"alias with spelling drift", "elefant", "elephant", true},
		{"one edit within bound", "hors", "horse", true},
		{"two edits on long word", "elephnat", "elephant", true},
		{"short word allows no edits", "cta", "", false},
		{"too far from any word", "zebra", "", false},
		{"empty word", "", "", false},
		{"whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cat.Correct(tt.word, distances)
			if ok != tt.wantOK {
				t.Fatalf("Correct(%q) ok = %v, want %v", tt.word, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("Correct(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestCorrectTieBreaksDeterministically(t *testing.T) {
	cat := New("pets", map[string][]string{
		"bat": nil,
		"cat": nil,
		"rat": nil,
	})
	// Distance 1 from all three candidates; the lexicographically first wins.
	distances := DistanceTableFunc(func(int) uint8 { return 1 })

	got, ok := cat.Correct("aat", distances)
	if !ok {
		t.Fatal("expected a correction")
	}
	if got != "bat" {
		t.Fatalf("expected deterministic tie-break to bat, got %q", got)
	}
}

func TestDefaultDistanceTable(t *testing.T) {
	distances := DefaultDistanceTable()
	tests := []struct {
		length int
		want   uint8
	}{
		{0, 0},
		{3, 0},
		{4, 1},
		{6, 1},
		{7, 2},
		{20, 2},
	}
	for _, tt := range tests {
		if got := distances.MaxEditDistance(tt.length); got != tt.want {
			t.Errorf("MaxEditDistance(%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}
