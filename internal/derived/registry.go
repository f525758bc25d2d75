package derived

import (
	"fmt"

	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

// ComputeFunc derives one column from the rows of a single asset. The
// returned column must have the same length as t. A nil column means the
// rule had nothing to compute for these rows.
type ComputeFunc func(t *table.Table) (*table.Column, error)

// Rule is a derived-column rule bound to a fixed set of assets.
type Rule struct {
	Name string
	// Assets lists the serials the rule applies to
	Assets []string
	// ExtraColumns are raw columns kept for the assets on top of the canonical set
	ExtraColumns []string
	// Output is the derived column name; empty for rules that only keep columns
	Output  string
	Compute ComputeFunc
}

// AppliesTo reports whether the rule handles the asset
func (r Rule) AppliesTo(asset string) bool {
	for _, a := range r.Assets {
		if a == asset {
			return true
		}
	}
	return false
}

// Registry is an ordered, read-only list of rules
type Registry struct {
	rules []Rule
}

// NewRegistry creates a registry from rules in evaluation order
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{rules: make([]Rule, len(rules))}
	copy(r.rules, rules)
	return r
}

// DefaultRegistry returns the rules shipped with the engine
func DefaultRegistry() *Registry {
	return NewRegistry(CylinderExhaustSpreadRule(), GeneratorElectricalRule())
}

// AdditionalColumns returns existing extended with the extra columns and
// outputs of every rule applying to the asset. Order is preserved and no
// name appears twice.
func (r *Registry) AdditionalColumns(existing []string, asset string) []string {
	out := make([]string, 0, len(existing))
	seen := make(map[string]bool, len(existing))
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range existing {
		add(name)
	}
	for _, rule := range r.rules {
		if !rule.AppliesTo(asset) {
			continue
		}
		for _, name := range rule.ExtraColumns {
			add(name)
		}
		add(rule.Output)
	}
	return out
}

// RunCurrent applies every computing rule to the assets it handles and
// joins the results back on (Asset, Timestamp). Values already present in
// the output column win over computed ones.
func (r *Registry) RunCurrent(t *table.Table) (*table.Table, error) {
	if !t.Has(domain.ColAsset) {
		return t, nil
	}
	assets := t.Unique(domain.ColAsset)
	for _, rule := range r.rules {
		if rule.Compute == nil || rule.Output == "" {
			continue
		}
		for _, asset := range assets {
			if !rule.AppliesTo(asset) {
				continue
			}
			var err error
			t, err = applyRule(t, rule, asset)
			if err != nil {
				return nil, fmt.Errorf("rule %s on asset %s: %w", rule.Name, asset, err)
			}
		}
	}
	return t, nil
}

func applyRule(t *table.Table, rule Rule, asset string) (*table.Table, error) {
	assetCol := t.Column(domain.ColAsset)
	sub := t.Filter(func(i int) bool {
		s, ok := assetCol.Text(i)
		return ok && s == asset
	})
	if sub.IsEmpty() {
		return t, nil
	}
	computed, err := rule.Compute(sub)
	if err != nil {
		return nil, err
	}
	if computed == nil {
		return t, nil
	}
	if computed.Len() != sub.Len() {
		return nil, fmt.Errorf("computed %d values for %d rows", computed.Len(), sub.Len())
	}

	joined := make(map[string]any, sub.Len())
	for i := 0; i < sub.Len(); i++ {
		key, ok := rowKey(sub, i)
		if !ok {
			continue
		}
		joined[key] = computed.Values[i]
	}

	return coalesceInto(t, rule.Output, computed.Kind, func(i int) any {
		key, ok := rowKey(t, i)
		if !ok {
			return nil
		}
		return joined[key]
	})
}

// rowKey builds the join key of row i. Rows without asset or timestamp
// never match.
func rowKey(t *table.Table, i int) (string, bool) {
	asset, ok := t.Column(domain.ColAsset).Text(i)
	if !ok {
		return "", false
	}
	ts := t.Column(domain.ColTimestamp)
	if ts == nil {
		return "", false
	}
	stamp, ok := ts.Text(i)
	if !ok {
		return "", false
	}
	return asset + "\x00" + stamp, true
}

// coalesceInto writes the first non-null of (existing value, right(i)) for
// every row into column name.
func coalesceInto(t *table.Table, name string, kind table.Kind, right func(i int) any) (*table.Table, error) {
	existing := t.Column(name)
	if existing == nil {
		existing = table.NullColumn(name, t.Len())
	}
	target, ok := table.Supertype(existing.Kind, kind)
	if !ok {
		return nil, fmt.Errorf("column %s: %s and %s: %w", name, existing.Kind, kind, table.ErrIncompatible)
	}
	left, err := existing.Cast(target)
	if err != nil {
		return nil, err
	}

	values := make([]any, t.Len())
	for i := range values {
		if v := left.Values[i]; v != nil {
			values[i] = v
			continue
		}
		v := right(i)
		if v == nil {
			continue
		}
		if target == table.KindText {
			cell := table.NewColumn(name, kind, []any{v})
			cast, err := cell.Cast(table.KindText)
			if err != nil {
				return nil, err
			}
			v = cast.Values[0]
		}
		values[i] = v
	}
	return t.With(table.NewColumn(name, target, values))
}
