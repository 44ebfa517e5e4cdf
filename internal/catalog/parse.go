package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/label"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/validation"
)

// #region records
type file struct {
	Cards []record `yaml:"cards" validate:"required,min=1,dive"`
}

type record struct {
	ID       string             `yaml:"id" validate:"required"`
	Name     string             `yaml:"name" validate:"required"`
	Axes     Axes               `yaml:"axes"`
	Energy   map[string]float64 `yaml:"energy" validate:"required,min=1,dive,keys,oneof=classic playful romantic utility drama edge,endkeys,gte=0,lte=1"`
	Keywords []string           `yaml:"keywords"`
	Group    string             `yaml:"group" validate:"required,oneof=major wands cups swords pentacles"`
	Rank     int                `yaml:"rank" validate:"gte=0,lte=21"`
	Special  bool               `yaml:"special"`
}

// #endregion records

// #region parse

// Parse decodes and validates a YAML catalog. Any schema violation fails the
// whole catalog.
func Parse(data []byte) ([]Candidate, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validation.Struct(f); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Cards))
	out := make([]Candidate, 0, len(f.Cards))
	for i, r := range f.Cards {
		id := label.Normalize(r.ID)
		if seen[id] {
			return nil, fmt.Errorf("validate catalog: duplicate id %q at index %d", id, i)
		}
		seen[id] = true
		out = append(out, r.toCandidate(id))
	}
	return out, nil
}

func (r record) toCandidate(id string) Candidate {
	en := make(map[energy.Category]float64, len(r.Energy))
	for name, v := range r.Energy {
		if c, ok := energy.ParseCategory(name); ok {
			en[c] = v
		}
	}
	kw := make(map[string]bool, len(r.Keywords))
	for _, k := range r.Keywords {
		if k = label.Normalize(k); k != "" {
			kw[k] = true
		}
	}
	return Candidate{
		ID:       id,
		Name:     r.Name,
		Axes:     r.Axes,
		Energy:   en,
		Keywords: kw,
		Group:    r.Group,
		Rank:     r.Rank,
		Special:  r.Special,
	}
}

// #endregion parse
