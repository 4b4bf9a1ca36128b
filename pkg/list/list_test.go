package list

import (
	"strings"
	"testing"
)

func items(pairs ...any) []Item {
	var out []Item
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, NewItem(pairs[i].(string), pairs[i+1].(int)))
	}
	return out
}

func TestFormatNumbered(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{
			name:  "FlatList",
			items: items("first", 1, "second", 1, "third", 1),
			want:  "1 first\n2 second\n3 third",
		},
		{
			name:  "NestedCounters",
			items: items("intro", 1, "setup", 1, "step one", 2, "step two", 2, "detail", 3, "wrap up", 1),
			want:  "1 intro\n2 setup\n2.1 step one\n2.2 step two\n2.2.1 detail\n3 wrap up",
		},
		{
			name:  "DeeperLevelResetsOnReturn",
			items: items("a", 1, "b", 2, "c", 1, "d", 2),
			want:  "1 a\n1.1 b\n2 c\n2.1 d",
		},
		{
			name:  "BlankItemsDropped",
			items: items("a", 1, "   ", 1, "b", 1),
			want:  "1 a\n2 b",
		},
		{
			name:  "LevelClamped",
			items: items("too deep", 9, "too shallow", -2),
			want:  "0.0.1 too deep\n1 too shallow",
		},
		{
			name:  "Empty",
			items: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNumbered(tt.items); got != tt.want {
				t.Errorf("FormatNumbered() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeItems(t *testing.T) {
	tests := []struct {
		name       string
		raw        []any
		fallback   string
		wantTexts  []string
		wantLevels []int
	}{
		{
			name:       "PlainStrings",
			raw:        []any{"a", "b"},
			wantTexts:  []string{"a", "b"},
			wantLevels: []int{1, 1},
		},
		{
			name: "PartialRecords",
			raw: []any{
				map[string]any{"text": "keep id", "id": "itm-1", "level": float64(2)},
				map[string]any{"text": "missing level"},
				map[string]any{"text": "string level", "level": "3"},
			},
			wantTexts:  []string{"keep id", "missing level", "string level"},
			wantLevels: []int{2, 1, 3},
		},
		{
			name:       "LevelCoercion",
			raw:        []any{map[string]any{"text": "x", "level": "nope"}, map[string]any{"text": "y", "level": float64(7)}},
			wantTexts:  []string{"x", "y"},
			wantLevels: []int{1, 3},
		},
		{
			name:       "FallbackText",
			fallback:   "1 alpha\n1.2 beta\n2.1.3 gamma\nplain line",
			wantTexts:  []string{"alpha", "beta", "gamma", "plain line"},
			wantLevels: []int{1, 2, 3, 1},
		},
		{
			name:       "FallbackLevelClamped",
			fallback:   "1.2.3.4 deep",
			wantTexts:  []string{"deep"},
			wantLevels: []int{3},
		},
		{
			name:       "EmptyEverything",
			wantTexts:  []string{""},
			wantLevels: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeItems(tt.raw, tt.fallback)

			if len(got) != len(tt.wantTexts) {
				t.Fatalf("NormalizeItems() returned %d items, want %d", len(got), len(tt.wantTexts))
			}
			for i, it := range got {
				if it.Text != tt.wantTexts[i] {
					t.Errorf("item %d text = %q, want %q", i, it.Text, tt.wantTexts[i])
				}
				if it.Level != tt.wantLevels[i] {
					t.Errorf("item %d level = %d, want %d", i, it.Level, tt.wantLevels[i])
				}
				if it.ID == "" {
					t.Errorf("item %d has empty id", i)
				}
			}
		})
	}
}

func TestNormalizeItemsPreservesExplicitID(t *testing.T) {
	got := NormalizeItems([]any{Item{ID: "stable", Text: "x", Level: 1}}, "")
	if got[0].ID != "stable" {
		t.Errorf("ID = %q, want stable", got[0].ID)
	}
}

func TestRoundTripThroughText(t *testing.T) {
	// Rendering, re-deriving items from the text, and rendering again must
	// reproduce the same text.
	cases := [][]Item{
		items("first", 1, "second", 1),
		items("a", 1, "b", 2, "c", 3, "d", 1),
		items("single", 1),
		items("x", 1, "y", 2, "z", 2),
	}

	for _, in := range cases {
		rendered := FormatNumbered(in)
		again := FormatNumbered(NormalizeItems(nil, rendered))
		if rendered != again {
			t.Errorf("round trip mismatch:\nfirst:  %q\nsecond: %q", rendered, again)
		}
	}
}

func TestFormatSkipsBlankWithoutBreakingCounters(t *testing.T) {
	in := items("a", 1, "", 2, "b", 1)
	got := FormatNumbered(in)
	if !strings.Contains(got, "2 b") {
		t.Errorf("counters disturbed by blank item: %q", got)
	}
}
