package domain

import (
	"net/url"
	"strconv"
)

// Categorical query parameters, in the order predicates are generated.
// Repeating a parameter ORs its values; distinct parameters AND together.
var CategoricalFields = []string{"payment_method", "country", "product_category", "status"}

// categoricalColumns maps query parameter names to canonical columns.
var categoricalColumns = map[string]string{
	"payment_method":   ColPaymentMethod,
	"country":          ColCountry,
	"product_category": ColProductCategory,
	"status":           ColStatus,
}

// CategoricalColumn returns the canonical column for a filter field name.
func CategoricalColumn(field string) string { return categoricalColumns[field] }

// Bounds holds optional numeric constraints on one dimension. All set bounds
// apply conjunctively; eq alongside gt/lt is accepted as-given even when the
// combination is unsatisfiable (an empty result set is a valid outcome).
type Bounds struct {
	GT *float64
	LT *float64
	EQ *float64
}

// IsZero reports whether no bound is set.
func (b Bounds) IsZero() bool { return b.GT == nil && b.LT == nil && b.EQ == nil }

// Match reports whether v satisfies every set bound.
func (b Bounds) Match(v float64) bool {
	if b.GT != nil && !(v > *b.GT) {
		return false
	}
	if b.LT != nil && !(v < *b.LT) {
		return false
	}
	if b.EQ != nil && v != *b.EQ {
		return false
	}
	return true
}

// FilterSpec is the normalized predicate over transaction fields. It is built
// once per request from raw query parameters and never mutated afterwards.
// An absent field means no constraint.
type FilterSpec struct {
	Equality map[string][]string // field name -> allowed values (OR within, AND across)
	Amount   Bounds
	Rating   Bounds
}

// IsZero reports whether the spec constrains nothing.
func (s FilterSpec) IsZero() bool {
	return len(s.Equality) == 0 && s.Amount.IsZero() && s.Rating.IsZero()
}

// Match applies the spec to a record in-memory. The SQL translation in
// internal/source must agree with this predicate exactly.
func (s FilterSpec) Match(r TransactionRecord) bool {
	values := map[string]string{
		"payment_method":   r.PaymentMethod,
		"country":          r.Country,
		"product_category": r.ProductCategory,
		"status":           r.Status,
	}
	for field, allowed := range s.Equality {
		found := false
		for _, v := range allowed {
			if values[field] == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !s.Amount.Match(r.Amount) {
		return false
	}
	if !s.Rating.IsZero() {
		if r.Rating == nil || !s.Rating.Match(*r.Rating) {
			return false
		}
	}
	return true
}

// BuildFilterSpec normalizes raw query parameters into a FilterSpec. It is a
// pure function: same parameters, same spec. A malformed numeric value fails
// with a ValidationError naming the parameter and the raw string; conflicting
// bounds (amount_gt=500&amount_lt=100) pass through untouched.
func BuildFilterSpec(params url.Values) (FilterSpec, error) {
	spec := FilterSpec{}

	for _, field := range CategoricalFields {
		vals := params[field]
		if len(vals) == 0 {
			continue
		}
		if spec.Equality == nil {
			spec.Equality = make(map[string][]string, len(CategoricalFields))
		}
		seen := make(map[string]bool, len(vals))
		for _, v := range vals {
			if !seen[v] {
				seen[v] = true
				spec.Equality[field] = append(spec.Equality[field], v)
			}
		}
	}

	var err error
	if spec.Amount, err = parseBounds(params, "amount"); err != nil {
		return FilterSpec{}, err
	}
	if spec.Rating, err = parseBounds(params, "rating"); err != nil {
		return FilterSpec{}, err
	}
	return spec, nil
}

func parseBounds(params url.Values, dim string) (Bounds, error) {
	b := Bounds{}
	for suffix, dst := range map[string]**float64{"_gt": &b.GT, "_lt": &b.LT, "_eq": &b.EQ} {
		name := dim + suffix
		raw := params.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Bounds{}, ErrValidation("invalid filter value for %s: %q is not a number", name, raw)
		}
		*dst = &v
	}
	return b, nil
}
