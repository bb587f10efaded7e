package domain

import "time"

// Canonical column names shared by the parquet lake and the warehouse.
// They follow the upstream feed's schema, which writes upper-case columns.
const (
	ColTransactionID   = "TRANSACTION_ID"
	ColTimestamp       = "TIMESTAMP"
	ColUserID          = "USER_ID"
	ColProductID       = "PRODUCT_ID"
	ColTransactionType = "TRANSACTION_TYPE"
	ColPaymentMethod   = "PAYMENT_METHOD"
	ColCountry         = "LOCATION_COUNTRY"
	ColProductCategory = "PRODUCT_CATEGORY"
	ColStatus          = "STATUS"
	ColAmount          = "AMOUNT_USD"
	ColRating          = "CUSTOMER_RATING"
	ColCurrency        = "CURRENCY"
	ColQuantity        = "QUANTITY"
)

// TransactionRecord is a read-only projection of one transaction row.
// Rating is nil when the customer left no rating.
type TransactionRecord struct {
	TransactionID   string    `json:"transaction_id"`
	Timestamp       time.Time `json:"timestamp"`
	UserID          string    `json:"user_id"`
	ProductID       string    `json:"product_id"`
	TransactionType string    `json:"transaction_type"`
	PaymentMethod   string    `json:"payment_method"`
	Country         string    `json:"country"`
	ProductCategory string    `json:"product_category"`
	Status          string    `json:"status"`
	Amount          float64   `json:"amount"`
	Rating          *float64  `json:"rating"`
	Currency        string    `json:"currency"`
	Quantity        int64     `json:"quantity"`
}

// RecentSpending is the summed amount over a trailing time window.
type RecentSpending struct {
	WindowMinutes int     `json:"window_minutes"`
	TotalAmount   float64 `json:"total_amount"`
}

// UserSpending is the summed amount for one (user, transaction type) pair.
type UserSpending struct {
	UserID          string  `json:"user_id"`
	TransactionType string  `json:"transaction_type"`
	TotalAmount     float64 `json:"total_amount"`
}

// ProductCount is a product's purchase count for the top-products ranking.
type ProductCount struct {
	ProductID string `json:"product_id"`
	Count     int64  `json:"purchase_count"`
}
