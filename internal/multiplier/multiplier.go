// Package multiplier combines a growth variant and a set of mutation bonuses
// into the total price multiplier applied to a crop's base price.
package multiplier

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownVariant = errors.New("unknown growth variant")
	ErrUnknownBonus   = errors.New("unknown mutation bonus")
)

// Selection is the variant and bonus choice of a single interaction.
type Selection struct {
	Variant string
	Bonuses []string
}

// Calculator computes total multipliers from a fixed set of tables.
type Calculator struct {
	tables   Tables
	variants map[string]int
	bonuses  map[string]int
}

// NewCalculator validates the tables and indexes them for lookups.
func NewCalculator(t Tables) (*Calculator, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	c := &Calculator{
		tables:   copyTables(t),
		variants: make(map[string]int, len(t.Variants)),
		bonuses:  make(map[string]int, len(t.Bonuses)),
	}
	for _, v := range t.Variants {
		c.variants[v.ID] = v.Multiplier
	}
	for _, b := range t.Bonuses {
		c.bonuses[b.ID] = b.Amount
	}
	return c, nil
}

// Tables returns a copy of the tables the calculator was built from.
func (c *Calculator) Tables() Tables {
	return copyTables(c.tables)
}

// Total returns variant * (1 + sum of distinct bonus amounts).
// An empty variant selects the baseline.
func (c *Calculator) Total(sel Selection) (int, error) {
	variantID := sel.Variant
	if variantID == "" {
		variantID = c.tables.Baseline
	}
	variantMultiplier, ok := c.variants[variantID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, sel.Variant)
	}

	weather := 1
	counted := make(map[string]bool, len(sel.Bonuses))
	for _, id := range sel.Bonuses {
		amount, ok := c.bonuses[id]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownBonus, id)
		}
		if counted[id] {
			continue
		}
		counted[id] = true
		weather += amount
	}

	return variantMultiplier * weather, nil
}

func copyTables(t Tables) Tables {
	out := Tables{Baseline: t.Baseline}
	out.Variants = append([]Variant(nil), t.Variants...)
	out.Bonuses = append([]Bonus(nil), t.Bonuses...)
	return out
}
