package commonModels

import "testing"

func TestFilters_Matches(t *testing.T) {
	payload := Payload{
		Book:        "Bhagavad Gita",
		Tradition:   "hindu",
		DeityGroups: []string{"krishna", "vishnu"},
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty filter matches everything", Filters{}, true},
		{"tradition match", Filters{Tradition: "hindu"}, true},
		{"tradition mismatch", Filters{Tradition: "christian"}, false},
		{"deity group membership", Filters{DeityGroup: "vishnu"}, true},
		{"deity group missing", Filters{DeityGroup: "shiva"}, false},
		{"book in set", Filters{Books: []string{"Mahabharata", "Bhagavad Gita"}}, true},
		{"book not in set", Filters{Books: []string{"Ramayana"}}, false},
		{"conjunction fails on one field", Filters{Tradition: "hindu", DeityGroup: "krishna", Books: []string{"Ramayana"}}, false},
		{"conjunction holds", Filters{Tradition: "hindu", DeityGroup: "krishna", Books: []string{"Bhagavad Gita"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Matches(payload); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
