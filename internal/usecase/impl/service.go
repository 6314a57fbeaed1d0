// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "coderr/internal/delivery/context"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// publishAfterCommit sends a domain event once the writing transaction is done.
// Publishing is best-effort; failures are logged and never surface to the caller.
func publishAfterCommit(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, eventType string, payload map[string]any) {
	if publisher == nil {
		return
	}

	event := &service.DomainEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish domain event",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID),
			slog.Any("error", err),
		)
	}
}

// notFound turns a repository miss into the 404 domain error.
func notFound(err error, missing error, message string) error {
	if errors.Is(err, missing) {
		return errors.Wrap(domainerrors.ErrNotFound, message)
	}

	return err
}

// deleteBlob removes a stored file, logging instead of failing.
func deleteBlob(ctx context.Context, storage service.FileStorage, logger *slog.Logger, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := storage.Delete(ctx, *key); err != nil {
		logger.Warn("Failed to delete stored file", slog.String("key", *key), slog.Any("error", err))
	}
}

// saveUpload stores an upload, mapping an oversized file to a field error.
func saveUpload(ctx context.Context, storage service.FileStorage, folder, field string, upload *service.Upload) (string, error) {
	key, err := storage.Save(ctx, folder, upload)
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			return "", domainerrors.NewValidationError(field, "The submitted file is too large.")
		}

		return "", errors.Wrap(err, "failed to store upload")
	}

	return key, nil
}
