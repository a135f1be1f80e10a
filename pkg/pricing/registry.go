package pricing

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Rule is a single unit-rate entry: what one unit of measure of one
// element category costs.
type Rule struct {
	// Category is the element category the rule prices (e.g. "Windows").
	// Matching is case-insensitive.
	Category string

	// Unit is the unit of measure the rate applies to (e.g. "EA", "SQ.M").
	// Matching is case-insensitive.
	Unit string

	// Rate is the unit price in USD.
	Rate decimal.Decimal

	// Description is an optional human-readable note.
	Description string
}

// Registry is an immutable lookup from (category, unit) to a unit rate.
// It is built once from configuration and never mutated afterwards, so a
// single aggregation pass always prices against one consistent rule set.
type Registry struct {
	rules map[string]Rule
}

// ruleKey normalizes a (category, unit) pair into a lookup key.
func ruleKey(category, unit string) string {
	return strings.ToLower(strings.TrimSpace(category)) + "|" + strings.ToLower(strings.TrimSpace(unit))
}

// NewRegistry builds a registry from a set of rules. Later duplicates of
// the same (category, unit) pair override earlier ones.
func NewRegistry(rules []Rule) *Registry {
	m := make(map[string]Rule, len(rules))
	for _, r := range rules {
		m[ruleKey(r.Category, r.Unit)] = r
	}
	return &Registry{rules: m}
}

// Resolve looks up the rule for a (category, unit) pair. The second return
// value reports whether a rule exists; a missing rule is a recoverable
// gap, not an error.
func (r *Registry) Resolve(category, unit string) (Rule, bool) {
	rule, ok := r.rules[ruleKey(category, unit)]
	return rule, ok
}

// Len returns the number of rules in the registry.
func (r *Registry) Len() int {
	return len(r.rules)
}

// ruleFile is the on-disk yaml shape of a pricing rules file.
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Category    string `yaml:"category"`
	Unit        string `yaml:"unit"`
	Rate        string `yaml:"rate"`
	Description string `yaml:"description"`
}

// LoadFile reads a pricing rules file and builds an immutable registry.
// Rates are decimal strings (e.g. "200.00") to avoid binary-float drift in
// configured prices.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing rules file %q: %w", path, err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse pricing rules file %q: %w", path, err)
	}

	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("pricing rules file %q contains no rules", path)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, e := range rf.Rules {
		if strings.TrimSpace(e.Category) == "" {
			return nil, fmt.Errorf("pricing rule %d: category is required", i)
		}
		if strings.TrimSpace(e.Unit) == "" {
			return nil, fmt.Errorf("pricing rule %d (%s): unit is required", i, e.Category)
		}
		rate, err := decimal.NewFromString(e.Rate)
		if err != nil {
			return nil, fmt.Errorf("pricing rule %d (%s/%s): invalid rate %q: %w", i, e.Category, e.Unit, e.Rate, err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("pricing rule %d (%s/%s): rate must not be negative", i, e.Category, e.Unit)
		}
		rules = append(rules, Rule{
			Category:    e.Category,
			Unit:        e.Unit,
			Rate:        rate,
			Description: e.Description,
		})
	}

	return NewRegistry(rules), nil
}
