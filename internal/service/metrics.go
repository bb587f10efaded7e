package service

import (
	"context"
	"net/url"
	"sort"
	"time"

	"lakegate/internal/domain"
)

// Metric defaults.
const (
	DefaultSpendingWindowMinutes = 5
	DefaultTopProductsLimit      = 10
)

// MetricsService computes derived aggregates over one source's records. The
// reducers themselves are pure; data access goes through the normal
// authorize-then-fetch pipeline of the TransactionService, so metrics are
// permission-gated exactly like raw fetches.
type MetricsService struct {
	tx            *TransactionService
	defaultSource SourceRef
	now           func() time.Time
}

// NewMetricsService creates a MetricsService reading defaultSource unless a
// request names another source.
func NewMetricsService(tx *TransactionService, defaultSource SourceRef) *MetricsService {
	return &MetricsService{tx: tx, defaultSource: defaultSource, now: time.Now}
}

func (s *MetricsService) resolveSource(raw string) (SourceRef, error) {
	if raw == "" {
		return s.defaultSource, nil
	}
	return ParseSourceRef(raw)
}

func (s *MetricsService) fetchAll(ctx context.Context, p domain.ContextPrincipal, rawSource string) ([]domain.TransactionRecord, error) {
	ref, err := s.resolveSource(rawSource)
	if err != nil {
		return nil, err
	}
	return s.tx.Fetch(ctx, p, ref, url.Values{})
}

// RecentSpending sums amounts over the trailing window. An empty match is a
// zero total, not an error.
func (s *MetricsService) RecentSpending(ctx context.Context, p domain.ContextPrincipal, rawSource string, windowMinutes int) (*domain.RecentSpending, error) {
	if windowMinutes <= 0 {
		windowMinutes = DefaultSpendingWindowMinutes
	}
	records, err := s.fetchAll(ctx, p, rawSource)
	if err != nil {
		return nil, err
	}
	return ReduceRecentSpending(records, windowMinutes, s.now()), nil
}

// UserSpending sums amounts per distinct (user, transaction type) pair.
func (s *MetricsService) UserSpending(ctx context.Context, p domain.ContextPrincipal, rawSource string) ([]domain.UserSpending, error) {
	records, err := s.fetchAll(ctx, p, rawSource)
	if err != nil {
		return nil, err
	}
	return ReduceUserSpending(records), nil
}

// TopProducts ranks products by purchase count.
func (s *MetricsService) TopProducts(ctx context.Context, p domain.ContextPrincipal, rawSource string, limit int) ([]domain.ProductCount, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}
	records, err := s.fetchAll(ctx, p, rawSource)
	if err != nil {
		return nil, err
	}
	return ReduceTopProducts(records, limit), nil
}

// ReduceRecentSpending totals amounts of records whose timestamp falls inside
// [now-window, now], inclusive on both ends.
func ReduceRecentSpending(records []domain.TransactionRecord, windowMinutes int, now time.Time) *domain.RecentSpending {
	from := now.Add(-time.Duration(windowMinutes) * time.Minute)
	total := 0.0
	for _, r := range records {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(now) {
			total += r.Amount
		}
	}
	return &domain.RecentSpending{WindowMinutes: windowMinutes, TotalAmount: total}
}

// ReduceUserSpending groups by (user, transaction type) and sums amounts.
// Output is sorted user ascending, then type ascending, for deterministic
// responses; the grouping itself is the contract, the order a convenience.
func ReduceUserSpending(records []domain.TransactionRecord) []domain.UserSpending {
	type key struct{ user, txType string }
	totals := make(map[key]float64)
	for _, r := range records {
		totals[key{r.UserID, r.TransactionType}] += r.Amount
	}

	out := make([]domain.UserSpending, 0, len(totals))
	for k, total := range totals {
		out = append(out, domain.UserSpending{UserID: k.user, TransactionType: k.txType, TotalAmount: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].TransactionType < out[j].TransactionType
	})
	return out
}

// ReduceTopProducts counts purchase transactions per product and returns the
// top `limit` products, count descending. Ties break by product id ascending
// so rankings are stable across runs and backing stores.
func ReduceTopProducts(records []domain.TransactionRecord, limit int) []domain.ProductCount {
	counts := make(map[string]int64)
	for _, r := range records {
		if r.TransactionType == "purchase" {
			counts[r.ProductID]++
		}
	}

	out := make([]domain.ProductCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, domain.ProductCount{ProductID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
