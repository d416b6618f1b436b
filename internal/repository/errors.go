package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"agencyhub/internal/apperr"
	"agencyhub/pkg/util"
)

// translate maps pgx failures onto the apperr taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case util.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w (%s): %w", op, apperr.ErrDuplicate, util.ConstraintName(err), err)
	}
	return apperr.Storage(op, err)
}
