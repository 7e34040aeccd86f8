// Package database manages the Postgres connection pool used by the
// market-data recorder.
package database
