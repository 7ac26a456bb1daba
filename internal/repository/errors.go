package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// StoreMessage extracts the human-readable message of a store error.
func StoreMessage(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	return err.Error()
}

// validID reports whether id can name a row. Ids are UUIDs in the store;
// anything else cannot match and is treated as a missing row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
