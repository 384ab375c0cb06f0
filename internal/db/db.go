package db

import (
	"database/sql"
)

// DB wraps the sql connection pool so callers depend on this package
// instead of database/sql directly.
type DB struct {
	*sql.DB
}
