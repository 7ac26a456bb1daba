package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestStoreMessage(t *testing.T) {
	assert.Equal(t, "", StoreMessage(nil))
	assert.Equal(t, "connection refused", StoreMessage(errors.New("connection refused")))

	pgErr := &pgconn.PgError{Code: "42501", Message: "permission denied for table flux"}
	assert.Equal(t, "permission denied for table flux", StoreMessage(fmt.Errorf("update: %w", pgErr)))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("5f0c6c1e-8d7a-4c1b-9a55-0b6f8b0f2a11"))
	assert.False(t, validID("f1"))
	assert.False(t, validID(""))
}
