package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakegate/internal/domain"
)

var metricsNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func purchase(id, user, product string, amount float64, age time.Duration) domain.TransactionRecord {
	return domain.TransactionRecord{
		TransactionID:   id,
		Timestamp:       metricsNow.Add(-age),
		UserID:          user,
		ProductID:       product,
		TransactionType: "purchase",
		Amount:          amount,
	}
}

func TestReduceRecentSpending_EmptyWindowIsZero(t *testing.T) {
	result := ReduceRecentSpending(nil, 5, metricsNow)
	assert.Equal(t, &domain.RecentSpending{WindowMinutes: 5, TotalAmount: 0}, result)
}

func TestReduceRecentSpending_WindowBoundaries(t *testing.T) {
	records := []domain.TransactionRecord{
		purchase("tx-1", "u-1", "p-1", 100, 0),              // now, included
		purchase("tx-2", "u-1", "p-1", 10, 5*time.Minute),   // exactly on the edge, included
		purchase("tx-3", "u-1", "p-1", 1000, 6*time.Minute), // too old
		purchase("tx-4", "u-1", "p-1", 1, -time.Minute),     // future, excluded
	}
	result := ReduceRecentSpending(records, 5, metricsNow)
	assert.Equal(t, 110.0, result.TotalAmount)
	assert.Equal(t, 5, result.WindowMinutes)
}

func TestReduceUserSpending_GroupsByUserAndType(t *testing.T) {
	refund := purchase("tx-4", "u-1", "p-1", 30, 0)
	refund.TransactionType = "refund"

	records := []domain.TransactionRecord{
		purchase("tx-1", "u-1", "p-1", 100, 0),
		purchase("tx-2", "u-1", "p-2", 50, 0),
		purchase("tx-3", "u-2", "p-1", 20, 0),
		refund,
	}

	got := ReduceUserSpending(records)
	assert.Equal(t, []domain.UserSpending{
		{UserID: "u-1", TransactionType: "purchase", TotalAmount: 150},
		{UserID: "u-1", TransactionType: "refund", TotalAmount: 30},
		{UserID: "u-2", TransactionType: "purchase", TotalAmount: 20},
	}, got)
}

func TestReduceUserSpending_Empty(t *testing.T) {
	assert.Empty(t, ReduceUserSpending(nil))
}

func TestReduceTopProducts_CountsOnlyPurchases(t *testing.T) {
	refund := purchase("tx-9", "u-1", "p-A", 10, 0)
	refund.TransactionType = "refund"

	records := []domain.TransactionRecord{
		purchase("tx-1", "u-1", "p-A", 10, 0),
		purchase("tx-2", "u-2", "p-A", 10, 0),
		purchase("tx-3", "u-3", "p-B", 10, 0),
		refund,
	}
	got := ReduceTopProducts(records, 10)
	assert.Equal(t, []domain.ProductCount{
		{ProductID: "p-A", Count: 2},
		{ProductID: "p-B", Count: 1},
	}, got)
}

func TestReduceTopProducts_TieBreakByProductID(t *testing.T) {
	var records []domain.TransactionRecord
	add := func(product string, n int) {
		for i := 0; i < n; i++ {
			records = append(records, purchase("tx", "u", product, 1, 0))
		}
	}
	add("p-A", 5)
	add("p-C", 3)
	add("p-B", 3)

	// B and C tie on count; B wins the second slot by id order.
	got := ReduceTopProducts(records, 2)
	assert.Equal(t, []domain.ProductCount{
		{ProductID: "p-A", Count: 5},
		{ProductID: "p-B", Count: 3},
	}, got)
}

func TestReduceTopProducts_LimitTruncates(t *testing.T) {
	records := []domain.TransactionRecord{
		purchase("tx-1", "u", "p-A", 1, 0),
		purchase("tx-2", "u", "p-B", 1, 0),
		purchase("tx-3", "u", "p-C", 1, 0),
	}
	assert.Len(t, ReduceTopProducts(records, 2), 2)
	assert.Len(t, ReduceTopProducts(records, 10), 3)
}

func TestMetricsService_GoesThroughAuthorization(t *testing.T) {
	parquet := &stubAdapter{records: map[string][]domain.TransactionRecord{
		"sales": {purchase("tx-1", "u-1", "p-1", 100, 0)},
	}}
	tx, permRepo, _ := testTxService(t, parquet, &stubAdapter{})
	svc := NewMetricsService(tx, SourceRef{Kind: KindParquet, Name: "sales"})
	svc.now = func() time.Time { return metricsNow }
	ctx := context.Background()

	// Metrics over an ungranted source are denied like raw fetches.
	_, err := svc.RecentSpending(ctx, domain.ContextPrincipal{Name: "analyst"}, "", 0)
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	_, err = permRepo.Grant(ctx, &domain.SourcePermission{UserName: "analyst", SourceName: "sales", GrantedBy: "admin"})
	require.NoError(t, err)

	result, err := svc.RecentSpending(ctx, domain.ContextPrincipal{Name: "analyst"}, "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSpendingWindowMinutes, result.WindowMinutes)
	assert.Equal(t, 100.0, result.TotalAmount)
}

func TestMetricsService_ExplicitSourceAndWindow(t *testing.T) {
	warehouse := &stubAdapter{records: map[string][]domain.TransactionRecord{
		"transactions": {
			purchase("tx-1", "u-1", "p-1", 100, time.Minute),
			purchase("tx-2", "u-1", "p-1", 40, time.Hour),
		},
	}}
	tx, _, _ := testTxService(t, &stubAdapter{}, warehouse)
	svc := NewMetricsService(tx, SourceRef{Kind: KindParquet, Name: "sales"})
	svc.now = func() time.Time { return metricsNow }

	admin := domain.ContextPrincipal{Name: "root", IsAdmin: true}
	result, err := svc.RecentSpending(context.Background(), admin, "db:transactions", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, result.WindowMinutes)
	assert.Equal(t, 100.0, result.TotalAmount)

	products, err := svc.TopProducts(context.Background(), admin, "db:transactions", 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(2), products[0].Count)
}
