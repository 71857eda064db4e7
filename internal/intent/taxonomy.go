// internal/intent/taxonomy.go
package intent

import (
	"sort"
	"strings"

	"voicefin/internal/common/config"
)

type taxonomyTerm struct {
	term     string
	category string
	order    int
}

// Taxonomy resolves free text to a spending category. Lookup is
// longest-match-first: when several taxonomy terms appear in one utterance the
// longest contained term wins, with declaration order breaking ties. The table
// comes from configuration, not a hardcoded chain.
type Taxonomy struct {
	terms []taxonomyTerm
}

// NewTaxonomy builds a Taxonomy from the ordered category table.
func NewTaxonomy(categories []config.CategoryRule) *Taxonomy {
	if len(categories) == 0 {
		categories = config.DefaultCategories()
	}

	var terms []taxonomyTerm
	order := 0
	for _, cat := range categories {
		for _, t := range cat.Terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			terms = append(terms, taxonomyTerm{term: t, category: cat.Name, order: order})
			order++
		}
	}

	sort.SliceStable(terms, func(i, j int) bool {
		if len(terms[i].term) != len(terms[j].term) {
			return len(terms[i].term) > len(terms[j].term)
		}
		return terms[i].order < terms[j].order
	})

	return &Taxonomy{terms: terms}
}

// Resolve returns the category for the first matching taxonomy term, or nil
// when no term is contained in the text.
func (x *Taxonomy) Resolve(text string) *string {
	text = strings.ToLower(text)
	for _, t := range x.terms {
		if strings.Contains(text, t.term) {
			cat := t.category
			return &cat
		}
	}
	return nil
}
