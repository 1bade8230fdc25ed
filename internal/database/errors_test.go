package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))

	pqErr := &pq.Error{Code: "23505", Constraint: PendingOfferIndex}
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pqErr)))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))

	sqliteErr := errors.New("constraint failed: UNIQUE constraint failed: counter_offers.order_id (2067)")
	assert.True(t, IsUniqueViolation(sqliteErr))
}
