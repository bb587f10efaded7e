// Package source implements the two transaction source adapters: the parquet
// data lake (through DuckDB) and the SQL warehouse. Both translate a
// FilterSpec through the same WhereClause builder, so identical specs produce
// identical filtering semantics on both stores.
package source

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lakegate/internal/domain"
)

// selectColumns is the projection shared by both adapters, in scan order.
var selectColumns = []string{
	domain.ColTransactionID,
	domain.ColTimestamp,
	domain.ColUserID,
	domain.ColProductID,
	domain.ColTransactionType,
	domain.ColPaymentMethod,
	domain.ColCountry,
	domain.ColProductCategory,
	domain.ColStatus,
	domain.ColAmount,
	domain.ColRating,
	domain.ColCurrency,
	domain.ColQuantity,
}

func selectList() string {
	return strings.Join(selectColumns, ", ")
}

// WhereClause translates a FilterSpec into a parameterized SQL predicate.
// Returns an empty clause when the spec constrains nothing. Categorical
// fields become IN lists (OR within a field), joined by AND with each other
// and with the numeric bounds. A NULL rating never satisfies a rating bound,
// matching FilterSpec.Match.
func WhereClause(spec domain.FilterSpec) (string, []any) {
	var conds []string
	var args []any

	for _, field := range domain.CategoricalFields {
		values := spec.Equality[field]
		if len(values) == 0 {
			continue
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		conds = append(conds, fmt.Sprintf("%s IN (%s)", domain.CategoricalColumn(field), placeholders))
		for _, v := range values {
			args = append(args, v)
		}
	}

	appendBounds := func(col string, b domain.Bounds) {
		if b.GT != nil {
			conds = append(conds, col+" > ?")
			args = append(args, *b.GT)
		}
		if b.LT != nil {
			conds = append(conds, col+" < ?")
			args = append(args, *b.LT)
		}
		if b.EQ != nil {
			conds = append(conds, col+" = ?")
			args = append(args, *b.EQ)
		}
	}
	appendBounds(domain.ColAmount, spec.Amount)
	appendBounds(domain.ColRating, spec.Rating)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanRecords drains rows into TransactionRecords. Timestamp and rating
// columns are scanned loosely because the two drivers (and parquet schemas in
// the wild) disagree on concrete Go types.
func scanRecords(rows *sql.Rows) ([]domain.TransactionRecord, error) {
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		var (
			rec    domain.TransactionRecord
			ts     any
			rating sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.TransactionID, &ts, &rec.UserID, &rec.ProductID,
			&rec.TransactionType, &rec.PaymentMethod, &rec.Country,
			&rec.ProductCategory, &rec.Status, &rec.Amount,
			&rating, &rec.Currency, &rec.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		t, err := coerceTimestamp(ts)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = t
		if rating.Valid {
			v := rating.Float64
			rec.Rating = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// coerceTimestamp accepts the timestamp representations the drivers produce:
// native time.Time from DuckDB and typed SQLite columns, or RFC 3339 text
// from the raw upstream feed.
func coerceTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimestampString(t)
	case []byte:
		return parseTimestampString(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimestampString(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", s)
}
