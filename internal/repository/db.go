package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is SQLSTATE 23505.
const pgUniqueViolation = "23505"

// conn returns tx when the caller runs inside a transaction, the pool otherwise.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// nextDailyValue bumps the (kind, day) row of daily_counters and returns the
// new value. The row lock is held until tx ends, so concurrent writers queue
// on it instead of reading the same count.
func nextDailyValue(ctx context.Context, db, tx *gorm.DB, kind string, day time.Time) (int, error) {
	var n int
	err := conn(ctx, db, tx).Raw(`
INSERT INTO daily_counters (kind, day, last_value) VALUES (?, ?, 1)
ON CONFLICT (kind, day) DO UPDATE SET last_value = daily_counters.last_value + 1
RETURNING last_value`, kind, day.Format("2006-01-02")).Scan(&n).Error
	return n, err
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
