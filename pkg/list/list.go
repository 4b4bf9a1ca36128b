// Package list models the hierarchical numbered lists carried by prompt nodes.
//
// Each node owns an ordered sequence of items with a depth level between 1
// and 3. The package normalizes loosely-shaped external input (plain strings,
// partial records, or a raw block of text) into fully-typed items, and renders
// items back into the canonical numbered text form stored in node content.
//
// Rendering and storage are intentionally decoupled: items whose trimmed text
// is empty are dropped from the rendered output but retained in the underlying
// list so they remain editable.
package list

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Depth bounds for item levels. Levels outside this range are clamped.
const (
	MinLevel = 1
	MaxLevel = 3
)

// Item is a single entry in a node's numbered list.
// The ID is an opaque token that stays stable across edits.
type Item struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// NewItem creates an item with a fresh opaque ID and a clamped level.
func NewItem(text string, level int) Item {
	return Item{
		ID:    uuid.NewString(),
		Text:  text,
		Level: ClampLevel(level),
	}
}

// ClampLevel forces a level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// numberToken matches a leading dotted numeric token ("1", "2.3", "1.1.4")
// followed by whitespace. The token's segment count is the item level.
var numberToken = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(.*)$`)

// NormalizeItems coerces heterogeneous external input into typed items.
//
// The raw sequence may contain plain strings or partially-formed records
// (map[string]any as produced by encoding/json). Records may carry "id",
// "text", and "level" fields; missing ids are replaced with fresh ones and
// malformed or non-numeric levels coerce to 1. Any other element type is
// rendered with its string form at level 1.
//
// When raw is empty, items are re-derived from the fallback text block: each
// line with a leading dotted-number token becomes an item at the level given
// by the token's segment count (clamped to [1,3]); other non-empty lines
// become level-1 items.
//
// The result is never empty - a single empty level-1 item is returned when
// nothing else could be derived.
func NormalizeItems(raw []any, fallback string) []Item {
	var items []Item

	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			items = append(items, NewItem(v, MinLevel))
		case Item:
			items = append(items, normalizeRecord(v.ID, v.Text, v.Level))
		case map[string]any:
			items = append(items, normalizeMap(v))
		default:
			items = append(items, NewItem(strings.TrimSpace(stringify(v)), MinLevel))
		}
	}

	if len(items) == 0 {
		items = parseFallback(fallback)
	}
	if len(items) == 0 {
		items = []Item{NewItem("", MinLevel)}
	}
	return items
}

func normalizeMap(m map[string]any) Item {
	id, _ := m["id"].(string)
	text, _ := m["text"].(string)

	level := MinLevel
	switch v := m["level"].(type) {
	case float64:
		level = ClampLevel(int(v))
	case int:
		level = ClampLevel(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			level = ClampLevel(n)
		}
	}

	return normalizeRecord(id, text, level)
}

func normalizeRecord(id, text string, level int) Item {
	if id == "" {
		id = uuid.NewString()
	}
	return Item{ID: id, Text: text, Level: ClampLevel(level)}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if st, ok := v.(interface{ String() string }); ok {
		return st.String()
	}
	return ""
}

// parseFallback re-derives items from a block of canonical numbered text.
func parseFallback(text string) []Item {
	var items []Item
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := numberToken.FindStringSubmatch(line); m != nil {
			level := strings.Count(m[1], ".") + 1
			items = append(items, NewItem(m[2], level))
			continue
		}
		items = append(items, NewItem(line, MinLevel))
	}
	return items
}

// FormatNumbered renders items as canonical numbered text.
//
// Each rendered line is "<token> <text>" where the token is the dot-joined
// per-level running counter (a level-2 third child under the second level-1
// item renders as "2.3"). Emitting an item at level L increments counter L
// and resets all deeper counters. Items with blank text are skipped without
// disturbing the counters of other items.
func FormatNumbered(items []Item) string {
	var counters [MaxLevel]int
	var lines []string

	for _, it := range items {
		if strings.TrimSpace(it.Text) == "" {
			continue
		}
		level := ClampLevel(it.Level)
		counters[level-1]++
		for i := level; i < MaxLevel; i++ {
			counters[i] = 0
		}

		parts := make([]string, level)
		for i := range level {
			parts[i] = strconv.Itoa(counters[i])
		}
		lines = append(lines, strings.Join(parts, ".")+" "+it.Text)
	}

	return strings.Join(lines, "\n")
}
