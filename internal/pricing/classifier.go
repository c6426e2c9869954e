package pricing

import "strings"

// DefaultCategory is returned when no keyword matches a product name.
const DefaultCategory = "Other"

// CategoryRule maps a category to its match keywords.
type CategoryRule struct {
	Category string
	Keywords []string
}

// Classifier assigns a category to a product name by case-insensitive
// substring matching. The first rule (in declaration order) with any matching
// keyword wins.
type Classifier struct {
	rules []CategoryRule
}

// NewClassifier builds a Classifier from ordered rules. Keywords are
// normalized to lower case once at construction.
func NewClassifier(rules []CategoryRule) *Classifier {
	normalized := make([]CategoryRule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		normalized = append(normalized, CategoryRule{Category: r.Category, Keywords: kws})
	}
	return &Classifier{rules: normalized}
}

// Classify returns the category for a product name, or DefaultCategory when
// nothing matches. Pure and deterministic.
func (c *Classifier) Classify(productName string) string {
	name := strings.ToLower(productName)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(name, kw) {
				return r.Category
			}
		}
	}
	return DefaultCategory
}
