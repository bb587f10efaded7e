package domain

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func record(mutate func(*TransactionRecord)) TransactionRecord {
	r := TransactionRecord{
		TransactionID:   "tx-1",
		Timestamp:       time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		UserID:          "u-1",
		ProductID:       "p-1",
		TransactionType: "purchase",
		PaymentMethod:   "credit_card",
		Country:         "DE",
		ProductCategory: "electronics",
		Status:          "completed",
		Amount:          300,
		Rating:          f64(4.5),
		Currency:        "USD",
		Quantity:        1,
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func TestBuildFilterSpec_Empty(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{})
	require.NoError(t, err)
	assert.True(t, spec.IsZero())
	assert.True(t, spec.Match(record(nil)))
}

func TestBuildFilterSpec_Deterministic(t *testing.T) {
	params := url.Values{
		"payment_method": {"credit_card", "paypal"},
		"country":        {"DE"},
		"amount_gt":      {"100"},
	}
	a, err := BuildFilterSpec(params)
	require.NoError(t, err)
	b, err := BuildFilterSpec(params)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildFilterSpec_RepeatedValuesOrWithinField(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{"payment_method": {"credit_card", "paypal"}})
	require.NoError(t, err)

	assert.True(t, spec.Match(record(nil)))
	assert.True(t, spec.Match(record(func(r *TransactionRecord) { r.PaymentMethod = "paypal" })))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.PaymentMethod = "wire" })))
}

func TestBuildFilterSpec_DistinctFieldsAndAcross(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{
		"payment_method": {"credit_card"},
		"country":        {"DE"},
	})
	require.NoError(t, err)

	assert.True(t, spec.Match(record(nil)))
	// Matching one field but not the other fails the conjunction.
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Country = "FR" })))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.PaymentMethod = "paypal" })))
}

func TestBuildFilterSpec_DuplicateValuesDeduped(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{"status": {"completed", "completed"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"completed"}, spec.Equality["status"])
}

func TestBuildFilterSpec_AmountBounds(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{"amount_gt": {"100"}, "amount_lt": {"500"}})
	require.NoError(t, err)

	assert.True(t, spec.Match(record(nil))) // amount 300
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Amount = 50 })))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Amount = 600 })))
	// Bounds are strict.
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Amount = 100 })))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Amount = 500 })))
}

func TestBuildFilterSpec_ConflictingBoundsPassThrough(t *testing.T) {
	// amount_gt=500&amount_lt=100 is unsatisfiable but not an error.
	spec, err := BuildFilterSpec(url.Values{"amount_gt": {"500"}, "amount_lt": {"100"}})
	require.NoError(t, err)
	assert.False(t, spec.Match(record(nil)))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Amount = 50 })))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Amount = 1000 })))
}

func TestBuildFilterSpec_EqAlongsideRange(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{"amount_eq": {"300"}, "amount_gt": {"100"}})
	require.NoError(t, err)
	assert.True(t, spec.Match(record(nil)))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Amount = 200 })))
}

func TestBuildFilterSpec_MalformedNumber(t *testing.T) {
	for _, params := range []url.Values{
		{"amount_gt": {"abc"}},
		{"amount_lt": {"12.3.4"}},
		{"rating_gt": {"four"}},
		{"rating_eq": {"NaN stars"}},
	} {
		_, err := BuildFilterSpec(params)
		require.Error(t, err, "params %v", params)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	}

	// An empty value means the parameter is absent, not malformed.
	spec, err := BuildFilterSpec(url.Values{"rating_eq": {""}})
	require.NoError(t, err)
	assert.True(t, spec.IsZero())
}

func TestBuildFilterSpec_MalformedNamesParameter(t *testing.T) {
	_, err := BuildFilterSpec(url.Values{"rating_gt": {"four"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating_gt")
	assert.Contains(t, err.Error(), "four")
}

func TestFilterSpec_RatingNullNeverMatchesBounds(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{"rating_gt": {"3"}})
	require.NoError(t, err)

	assert.True(t, spec.Match(record(nil))) // rating 4.5
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Rating = nil })))
}

func TestFilterSpec_RatingEq(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{"rating_eq": {"4.5"}})
	require.NoError(t, err)
	assert.True(t, spec.Match(record(nil)))
	assert.False(t, spec.Match(record(func(r *TransactionRecord) { r.Rating = f64(4.0) })))
}

func TestBuildFilterSpec_UnknownParamsIgnored(t *testing.T) {
	spec, err := BuildFilterSpec(url.Values{"nonsense": {"x"}, "limit": {"10"}})
	require.NoError(t, err)
	assert.True(t, spec.IsZero())
}
