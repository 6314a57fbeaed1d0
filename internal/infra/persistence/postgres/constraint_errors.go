package postgres

import (
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Constraint and index names declared by the migrations.
const (
	constraintUsername       = "uq_users_username"
	constraintEmailLower     = "uq_users_email_lower"
	constraintOfferType      = "uq_offer_details_offer_type"
	constraintReviewerPerBiz = "uq_reviews_reviewer_business"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}

	return nil, false
}

// Helper functions for PostgreSQL error checking
func isUniqueConstraintViolation(err error) bool {
	// Check for GORM's duplicate key error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	pgErr, ok := pgError(err)

	return ok && pgErr.Code == pgerrcode.UniqueViolation
}

// violatedConstraint returns the constraint name of a driver error, or "" when unknown.
func violatedConstraint(err error) string {
	if pgErr, ok := pgError(err); ok {
		return pgErr.ConstraintName
	}

	return ""
}

func isForeignKeyConstraintViolation(err error) bool {
	// Check for GORM's foreign key violation error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	pgErr, ok := pgError(err)

	return ok && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func isNotNullConstraintViolation(err error) bool {
	pgErr, ok := pgError(err)

	return ok && pgErr.Code == pgerrcode.NotNullViolation
}

func isCheckConstraintViolation(err error) bool {
	// Check for GORM's check constraint violation error
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	pgErr, ok := pgError(err)

	return ok && pgErr.Code == pgerrcode.CheckViolation
}
