package assessment

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed bank.json
var defaultBankJSON []byte

// Bank is an indexed item bank.
type Bank struct {
	items map[string]Item
	order []string // bank order, stable
}

// NewBank builds a bank from items, filling in IRT parameter defaults.
func NewBank(items []Item) *Bank {
	b := &Bank{items: make(map[string]Item, len(items))}
	for _, it := range items {
		if it.IRT.Discrimination == 0 {
			it.IRT.Discrimination = 1.0
		}
		b.items[it.ID] = it
		b.order = append(b.order, it.ID)
	}
	return b
}

// DefaultBank loads the bundled item bank.
func DefaultBank() (*Bank, error) {
	var doc struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(defaultBankJSON, &doc); err != nil {
		return nil, fmt.Errorf("decode bundled item bank: %w", err)
	}
	return NewBank(doc.Items), nil
}

// Item looks up an item by id.
func (b *Bank) Item(id string) (Item, bool) {
	it, ok := b.items[id]
	return it, ok
}

// Len reports the bank size.
func (b *Bank) Len() int {
	return len(b.items)
}

// ForCompetency returns the items measuring a competency that match the
// respondent's context. An item with no industry, role, or experience
// constraint matches any context.
func (b *Bank) ForCompetency(competency string, rctx Context) []Item {
	var out []Item
	for _, id := range b.order {
		it := b.items[id]
		if it.Competency != competency {
			continue
		}
		if !matches(it.Industries, rctx.Industry) ||
			!matches(it.Roles, rctx.Role) ||
			!matches(it.ExperienceLevels, rctx.ExperienceLevel) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matches(allowed []string, value string) bool {
	if len(allowed) == 0 || value == "" {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
