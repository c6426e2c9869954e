package config

import "price-scout/internal/pricing"

// Category couples a category's classifier keywords with its optimization
// parameters. Declaration order matters: the classifier resolves keyword ties
// by the first category listed.
type Category struct {
	Name     string         `json:"name"`
	Keywords []string       `json:"keywords"`
	Params   pricing.Params `json:"params"`
}

// Registry is an ordered, immutable-per-run set of categories. Lookups for
// unknown categories resolve to the default entry.
type Registry struct {
	order  []Category
	byName map[string]pricing.Params
}

// NewRegistry builds a Registry from ordered categories, appending the
// default entry when the caller did not provide one.
func NewRegistry(categories []Category) *Registry {
	r := &Registry{byName: make(map[string]pricing.Params, len(categories)+1)}
	hasDefault := false
	for _, c := range categories {
		r.order = append(r.order, c)
		r.byName[c.Name] = c.Params
		if c.Name == pricing.DefaultCategory {
			hasDefault = true
		}
	}
	if !hasDefault {
		def := Category{Name: pricing.DefaultCategory, Params: DefaultParams()}
		r.order = append(r.order, def)
		r.byName[def.Name] = def.Params
	}
	return r
}

// ParamsFor returns the parameters for a category, falling back to the
// default entry for unknown names.
func (r *Registry) ParamsFor(category string) pricing.Params {
	if p, ok := r.byName[category]; ok {
		return p
	}
	return r.byName[pricing.DefaultCategory]
}

// Categories returns the ordered category list.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.order))
	copy(out, r.order)
	return out
}

// Rules returns the ordered classifier rules derived from the registry.
func (r *Registry) Rules() []pricing.CategoryRule {
	rules := make([]pricing.CategoryRule, 0, len(r.order))
	for _, c := range r.order {
		rules = append(rules, pricing.CategoryRule{Category: c.Name, Keywords: c.Keywords})
	}
	return rules
}

// DefaultParams is the parameter set for the default category.
func DefaultParams() pricing.Params {
	return pricing.Params{
		Elasticity:     1.5,
		Saturation:     2.0,
		MinMarginPct:   0.20,
		MaxIncreasePct: 0.30,
		MaxDecreasePct: 0.25,
	}
}

// DefaultCategories seeds the registry on first run with the merchant's
// standing product lines.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:     "Sunglasses",
			Keywords: []string{"sunglass", "shades", "eyewear"},
			Params: pricing.Params{
				Elasticity:     1.8,
				Saturation:     2.0,
				MinMarginPct:   0.30,
				MaxIncreasePct: 0.25,
				MaxDecreasePct: 0.20,
			},
		},
		{
			Name:     "Bottles",
			Keywords: []string{"bottle", "thermos", "flask"},
			Params: pricing.Params{
				Elasticity:     1.4,
				Saturation:     2.5,
				MinMarginPct:   0.25,
				MaxIncreasePct: 0.30,
				MaxDecreasePct: 0.25,
			},
		},
		{
			Name:     "Notebooks",
			Keywords: []string{"notebook", "journal", "diary"},
			Params: pricing.Params{
				Elasticity:     2.0,
				Saturation:     3.0,
				MinMarginPct:   0.20,
				MaxIncreasePct: 0.35,
				MaxDecreasePct: 0.30,
			},
		},
		{
			Name:     "Lunchboxes",
			Keywords: []string{"lunchbox", "lunch box", "bento"},
			Params: pricing.Params{
				Elasticity:     1.6,
				Saturation:     2.0,
				MinMarginPct:   0.25,
				MaxIncreasePct: 0.30,
				MaxDecreasePct: 0.25,
			},
		},
		{
			Name:     "Scarves",
			Keywords: []string{"scarf", "shawl", "stole"},
			Params: pricing.Params{
				Elasticity:     1.2,
				Saturation:     1.8,
				MinMarginPct:   0.35,
				MaxIncreasePct: 0.40,
				MaxDecreasePct: 0.20,
			},
		},
		{
			Name:   pricing.DefaultCategory,
			Params: DefaultParams(),
		},
	}
}
