package multiplier

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Variant is a mutually exclusive growth tier such as gold or rainbow.
type Variant struct {
	ID         string `yaml:"id" json:"id"`
	Label      string `yaml:"label" json:"label"`
	Multiplier int    `yaml:"multiplier" json:"multiplier"`
}

// Bonus is an independently toggleable mutation adding to the weather multiplier.
type Bonus struct {
	ID     string `yaml:"id" json:"id"`
	Label  string `yaml:"label" json:"label"`
	Amount int    `yaml:"amount" json:"amount"`
}

// Tables holds the variant and bonus definitions used by a Calculator.
type Tables struct {
	Baseline string    `yaml:"baseline" json:"baseline"`
	Variants []Variant `yaml:"variants" json:"variants"`
	Bonuses  []Bonus   `yaml:"bonuses" json:"bonuses"`
}

// DefaultTables returns the in-game values for growth variants and mutations.
func DefaultTables() Tables {
	return Tables{
		Baseline: "normal",
		Variants: []Variant{
			{ID: "normal", Label: "Normal (일반)", Multiplier: 1},
			{ID: "gold", Label: "Gold (골드)", Multiplier: 20},
			{ID: "rainbow", Label: "Rainbow (레인보우)", Multiplier: 50},
		},
		Bonuses: []Bonus{
			{ID: "wet", Label: "Wet (웻)", Amount: 1},
			{ID: "chilled", Label: "Chilled (칠드)", Amount: 1},
			{ID: "frozen", Label: "Frozen (프로즌)", Amount: 9},
			{ID: "shocked", Label: "Shocked (쇼크드)", Amount: 99},
			{ID: "moonlit", Label: "Moonlit (문라이트)", Amount: 1},
			{ID: "choc", Label: "Choc (초코)", Amount: 1},
			{ID: "disco", Label: "Disco (디스코)", Amount: 124},
			{ID: "bloodlit", Label: "Bloodlit (블러드라이트)", Amount: 3},
			{ID: "celestial", Label: "Celestial (셀레스티얼)", Amount: 119},
			{ID: "zombified", Label: "Zombified (좀비)", Amount: 24},
			{ID: "plasma", Label: "Plasma (플라즈마)", Amount: 4},
			{ID: "voidtouched", Label: "Voidtouched (보이드터치)", Amount: 134},
			{ID: "pollinated", Label: "Pollinated (수분받음)", Amount: 2},
			{ID: "honeyglazed", Label: "HoneyGlazed (허니글레이즈)", Amount: 4},
			{ID: "heavenly", Label: "Heavenly (헤븐리)", Amount: 4},
			{ID: "dawnbound", Label: "Dawnbound (던바운드)", Amount: 149},
			{ID: "molten", Label: "Molten (몰튼)", Amount: 24},
			{ID: "meteoric", Label: "Meteoric (메테오릭)", Amount: 124},
			{ID: "burnt", Label: "Burnt (번트)", Amount: 3},
			{ID: "cooked", Label: "Cooked (구워진)", Amount: 9},
		},
	}
}

// LoadTables reads variant and bonus tables from a YAML file and validates them.
func LoadTables(path string) (Tables, error) {
	var t Tables
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read multiplier tables: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse multiplier tables %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate checks that the tables can only ever produce a total of at least 1.
func (t Tables) Validate() error {
	if len(t.Variants) == 0 {
		return errors.New("multiplier tables: no variants defined")
	}

	seen := make(map[string]bool, len(t.Variants))
	baselineFound := false
	for _, v := range t.Variants {
		if v.ID == "" {
			return errors.New("multiplier tables: variant with empty id")
		}
		if seen[v.ID] {
			return fmt.Errorf("multiplier tables: duplicate variant %q", v.ID)
		}
		seen[v.ID] = true
		if v.Multiplier < 1 {
			return fmt.Errorf("multiplier tables: variant %q multiplier must be >= 1, got %d", v.ID, v.Multiplier)
		}
		if v.ID == t.Baseline {
			if v.Multiplier != 1 {
				return fmt.Errorf("multiplier tables: baseline %q must have multiplier 1, got %d", v.ID, v.Multiplier)
			}
			baselineFound = true
		}
	}
	if !baselineFound {
		return fmt.Errorf("multiplier tables: baseline variant %q not defined", t.Baseline)
	}

	seen = make(map[string]bool, len(t.Bonuses))
	for _, b := range t.Bonuses {
		if b.ID == "" {
			return errors.New("multiplier tables: bonus with empty id")
		}
		if seen[b.ID] {
			return fmt.Errorf("multiplier tables: duplicate bonus %q", b.ID)
		}
		seen[b.ID] = true
		if b.Amount < 1 {
			return fmt.Errorf("multiplier tables: bonus %q amount must be >= 1, got %d", b.ID, b.Amount)
		}
	}

	return nil
}
