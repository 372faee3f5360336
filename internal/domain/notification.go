package domain

import "context"

// NotificationService defines the interface for notification services
type NotificationService interface {
	// SendSuccess sends a success notification with the run report
	SendSuccess(ctx context.Context, report SyncReport) error

	// SendError sends an error notification with error details
	SendError(ctx context.Context, err error) error
}
