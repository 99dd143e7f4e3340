package catalog

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/snowyfields/marketboard/internal/model"
)

// Normalize maps a display name or query keyword to the form the index
// compares on: full-width runes folded to their narrow equivalents, letters
// lower-cased, every whitespace rune (including U+3000) dropped. Build and
// query must use the same function or lookups silently miss.
func Normalize(s string) string {
	folded := width.Fold.String(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Index answers keyword lookups over the loaded catalog. It is read-only
// after New and safe for concurrent use.
type Index struct {
	items []model.Item
	exact map[string][]model.Item
}

// New builds the index once from the loaded items.
func New(items []model.Item) *Index {
	ix := &Index{
		items: items,
		exact: make(map[string][]model.Item, len(items)),
	}
	for _, it := range items {
		if it.SearchKey == "" {
			continue
		}
		ix.exact[it.SearchKey] = append(ix.exact[it.SearchKey], it)
	}
	return ix
}

// Resolve returns up to limit candidates for keyword, in three strict
// tiers: exact matches win outright, otherwise prefix matches rank ahead of
// substring matches, shorter display names first within a tier. A keyword
// that normalizes to nothing matches nothing.
func (ix *Index) Resolve(keyword string, limit int) []model.Candidate {
	key := Normalize(keyword)
	if key == "" || limit <= 0 {
		return nil
	}

	if hits, ok := ix.exact[key]; ok {
		out := make([]model.Candidate, 0, len(hits))
		for _, it := range hits {
			if len(out) == limit {
				break
			}
			out = append(out, model.Candidate{ID: it.ID, Name: it.Name})
		}
		return out
	}

	var prefix, substr []model.Item
	for _, it := range ix.items {
		switch {
		case it.SearchKey == "":
		case strings.HasPrefix(it.SearchKey, key):
			prefix = append(prefix, it)
		case strings.Contains(it.SearchKey, key):
			substr = append(substr, it)
		}
	}
	byNameLength(prefix)
	byNameLength(substr)

	seen := make(map[int]bool)
	var out []model.Candidate
	for _, it := range append(prefix, substr...) {
		if len(out) == limit {
			break
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, model.Candidate{ID: it.ID, Name: it.Name})
	}
	return out
}

// byNameLength ranks shorter display names first; a short name is the
// better guess for a terse query. Ties keep catalog (id) order.
func byNameLength(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return utf8.RuneCountInString(items[i].Name) < utf8.RuneCountInString(items[j].Name)
	})
}
