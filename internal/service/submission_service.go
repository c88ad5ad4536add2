package service

import (
	"context"

	"github.com/servicedesk/backend/internal/model"
)

// SubmissionService defines the business logic for service requests.
type SubmissionService interface {
	// Submit validates and stores a new request, then schedules the admin
	// notification without waiting for it. Notification failures are never
	// returned.
	Submit(ctx context.Context, in model.SubmissionInput) (*model.Submission, error)

	// List returns every submission, newest first.
	List(ctx context.Context) ([]*model.Submission, error)

	// Resend sends the admin notification for an existing submission and
	// waits for the result.
	Resend(ctx context.Context, id int64) error
}
