package repositories

import (
	"database/sql"
	"fmt"
)

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence bumps the single-row counter in table_sequence and returns the new value.
//
// Run it inside the transaction that inserts the row so a rolled back insert does not consume a number.
func NextSequence(q queryRower, table string) (int, error) {
	var next int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := q.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return next, nil
}
