package domain

import "time"

// SourcePermission authorizes a user to query one named source (a parquet
// folder or a warehouse table). Source names are case-sensitive opaque
// strings with no implied hierarchy; the absence of a row means no access.
type SourcePermission struct {
	ID         int64
	UserName   string
	SourceName string
	GrantedBy  string
	GrantedAt  time.Time
}
