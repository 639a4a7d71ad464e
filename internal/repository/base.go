// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"jobcrm/internal/models"
	"jobcrm/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// findOrInsert inserts row unless a row with the same natural key (conflictCols)
// already exists, in which case the stored row is read back through lookup.
// created reports whether row was the one written. The insert never raises a
// unique violation for the conflict target, so it is safe inside a postgres
// transaction; a violation that still surfaces is answered by one re-read.
func findOrInsert[T any](ctx context.Context, db *gorm.DB, table string, row *T, conflictCols []string, lookup func(*gorm.DB) *gorm.DB) (*T, bool, error) {
	defer observability.TrackQuery("find_or_insert", table)()

	cols := make([]clause.Column, 0, len(conflictCols))
	for _, c := range conflictCols {
		cols = append(cols, clause.Column{Name: c})
	}

	res := db.WithContext(ctx).Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).Create(row)
	if res.Error != nil && !isUniqueConstraintError(res.Error) {
		return nil, false, models.NewInternalError(res.Error)
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return row, true, nil
	}

	var existing T
	if err := lookup(db.WithContext(ctx)).First(&existing).Error; err != nil {
		return nil, false, models.NewInternalError(err)
	}
	return &existing, false, nil
}
