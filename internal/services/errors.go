package services

import (
	"errors"

	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
)

// repoError converts a repository error into an AppError. notFound is the
// caller-facing message when the document is missing or owned by another org.
func repoError(err error, notFound string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return utils.NewNotFoundError(notFound)
	}
	return utils.NewInternalError(err)
}

// statusUpdateError maps conditional status update failures.
func statusUpdateError(err error, notFound string) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return utils.NewNotFoundError(notFound)
	case errors.Is(err, interfaces.ErrStatusChanged):
		return utils.NewInvalidStateError(utils.ErrInvalidTransition)
	default:
		return utils.NewInternalError(err)
	}
}
