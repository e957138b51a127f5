package query

import "testing"

func TestSearchQuery_Identity(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  Identity
	}{
		{
			name:  "basic query",
			query: SearchQuery{Text: "cats", OrderBy: OrderByRelevant, PerPage: 12},
			want:  "photos:search:cats:relevant::12",
		},
		{
			name:  "query with color filter",
			query: SearchQuery{Text: "cats", OrderBy: OrderByLatest, Color: ColorTeal, PerPage: 12},
			want:  "photos:search:cats:latest:teal:12",
		},
		{
			name:  "zero order defaults to relevant",
			query: SearchQuery{Text: "cats", PerPage: 12},
			want:  "photos:search:cats:relevant::12",
		},
		{
			name:  "text is trimmed",
			query: SearchQuery{Text: "  cats  ", OrderBy: OrderByRelevant, PerPage: 12},
			want:  "photos:search:cats:relevant::12",
		},
		{
			name:  "empty text collapses to sentinel",
			query: SearchQuery{Text: "", OrderBy: OrderByLatest, Color: ColorRed, PerPage: 30},
			want:  SentinelIdentity,
		},
		{
			name:  "whitespace text collapses to sentinel",
			query: SearchQuery{Text: "   ", PerPage: 12},
			want:  SentinelIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.query.Identity()
			if got != tt.want {
				t.Errorf("Identity() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestIdentity_FieldSensitivity ensures every field except the page
// number participates in the identity.
func TestIdentity_FieldSensitivity(t *testing.T) {
	base := SearchQuery{Text: "cats", OrderBy: OrderByRelevant, PerPage: 12}

	variants := map[string]SearchQuery{
		"different text":    {Text: "dogs", OrderBy: OrderByRelevant, PerPage: 12},
		"different orderBy": {Text: "cats", OrderBy: OrderByLatest, PerPage: 12},
		"different color":   {Text: "cats", OrderBy: OrderByRelevant, Color: ColorBlue, PerPage: 12},
		"different perPage": {Text: "cats", OrderBy: OrderByRelevant, PerPage: 30},
	}

	for name, variant := range variants {
		if variant.Identity() == base.Identity() {
			t.Errorf("%s: identity should differ from base", name)
		}
	}
}

func TestIdentity_Deterministic(t *testing.T) {
	q := SearchQuery{Text: "mountains", OrderBy: OrderByLatest, Color: ColorGreen, PerPage: 12}

	first := q.Identity()
	for i := 0; i < 10; i++ {
		if got := q.Identity(); got != first {
			t.Fatalf("Identity() = %v, want %v (not deterministic)", got, first)
		}
	}
}

func TestSentinelIdentity_ConstantAcrossFields(t *testing.T) {
	queries := []SearchQuery{
		{Text: ""},
		{Text: "", OrderBy: OrderByLatest},
		{Text: "", Color: ColorMagenta, PerPage: 50},
		{Text: "\t\n"},
	}

	for _, q := range queries {
		if got := q.Identity(); got != SentinelIdentity {
			t.Errorf("Identity(%+v) = %v, want sentinel", q, got)
		}
	}
}

func TestDetailIdentities(t *testing.T) {
	if PhotoDetailIdentity("abc") != Identity("photos:abc") {
		t.Error("unexpected photo detail identity")
	}
	if UserDetailIdentity("tiger") != Identity("users:tiger") {
		t.Error("unexpected user detail identity")
	}
	if UserPhotosIdentity("tiger") != Identity("users:tiger:photos") {
		t.Error("unexpected user photos identity")
	}
	if PhotoDetailIdentity("") != SentinelIdentity {
		t.Error("empty photo id should collapse to sentinel")
	}
	if UserDetailIdentity("") != SentinelIdentity {
		t.Error("empty username should collapse to sentinel")
	}
}

func TestColor_IsValid(t *testing.T) {
	if !Color("").IsValid() {
		t.Error("empty color (no filter) should be valid")
	}
	for _, c := range Colors {
		if !c.IsValid() {
			t.Errorf("color %q should be valid", c)
		}
	}
	if Color("crimson").IsValid() {
		t.Error("unknown color should be invalid")
	}
}

func TestOrderBy_IsValid(t *testing.T) {
	if !OrderByRelevant.IsValid() || !OrderByLatest.IsValid() {
		t.Error("known orders should be valid")
	}
	if OrderBy("oldest").IsValid() {
		t.Error("unknown order should be invalid")
	}
}
