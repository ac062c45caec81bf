package usecase

import (
	"context"
	"errors"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/apperror"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/logger"
)

const msgConcurrentUpdate = "This record was modified concurrently, please retry"

// repoError translates repository sentinels into application errors.
func repoError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, domain.ErrDuplicate):
		return apperror.Conflict("Resource already exists")
	case errors.Is(err, domain.ErrStaleVersion):
		return apperror.Conflict(msgConcurrentUpdate)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperror.KindOf(err))
}

// discard removes a document rendered for a write that did not persist.
func discard(ctx context.Context, docs domain.DocumentGenerator, path string) {
	if err := docs.Discard(context.WithoutCancel(ctx), path); err != nil {
		logger.Log.Warn("Failed to discard unsaved document", "document", path, "error", err)
	}
}
