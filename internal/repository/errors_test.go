package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"duplicate plate", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "vehicles_license_plate_key"}, ErrDuplicateKey},
		{"second dispatch of a vehicle", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "uniq_trips_dispatched_vehicle"}, ErrConflict},
		{"referenced row", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "trips_vehicle_id_fkey"}, ErrReferenced},
		{"serialization failure", &pgconn.PgError{Code: pgSerializationFailure}, ErrConflict},
		{"deadlock", &pgconn.PgError{Code: pgDeadlockDetected}, ErrConflict},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgLockNotAvailable}), ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.err), tt.want)
		})
	}

	assert.NoError(t, translateError(nil))

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))

	check := &pgconn.PgError{Code: "23514"}
	assert.Equal(t, error(check), translateError(check))
}
