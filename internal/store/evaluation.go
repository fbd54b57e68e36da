package store

import (
	"fmt"

	"dimop-backend/internal/database/models"
	"dimop-backend/internal/hierarchy"
)

// Evaluation aggregates a component subtree: the effective weight rolled up
// from the leaves and the CO2 footprint of the materials involved.
type Evaluation struct {
	ComponentID     uint    `json:"component_id"`
	EffectiveWeight float64 `json:"effective_weight"`
	TotalCO2        float64 `json:"total_co2"`
	LeafCount       int     `json:"leaf_count"`
}

// Evaluate computes the evaluation for one component. A leaf contributes its
// own stored weight; an assembly's weight is the sum of its children's
// effective weights regardless of any stored value. CO2 is accumulated per
// leaf as weight times the referenced material's CO2 value.
func (s *Store) Evaluate(id uint) (*Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getComponent(id); err != nil {
		return nil, err
	}
	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}
	if err := resolver.Validate(); err != nil {
		return nil, err
	}

	materials, err := s.materials.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	co2ByMaterial := make(map[uint]float64, len(materials))
	for _, m := range materials {
		co2ByMaterial[m.ID] = m.CO2OrDefault()
	}

	eval := &Evaluation{ComponentID: id}
	root, _ := resolver.Get(id)
	eval.EffectiveWeight = s.accumulate(resolver, root, co2ByMaterial, eval)
	return eval, nil
}

func (s *Store) accumulate(resolver *hierarchy.Resolver, c *models.Component, co2 map[uint]float64, eval *Evaluation) float64 {
	children := resolver.ChildrenOf(c.ID)
	if len(children) == 0 {
		weight := 0.0
		if c.Weight != nil {
			weight = *c.Weight
		}
		eval.TotalCO2 += weight * co2[c.MaterialID]
		eval.LeafCount++
		return weight
	}
	total := 0.0
	for i := range children {
		total += s.accumulate(resolver, &children[i], co2, eval)
	}
	return total
}
