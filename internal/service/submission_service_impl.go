package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/servicedesk/backend/internal/dispatch"
	"github.com/servicedesk/backend/internal/metrics"
	"github.com/servicedesk/backend/internal/model"
	"github.com/servicedesk/backend/internal/notify"
	"github.com/servicedesk/backend/internal/repository"
)

// submissionServiceImpl is the production implementation of SubmissionService.
type submissionServiceImpl struct {
	repo       repository.SubmissionRepository
	dispatcher dispatch.Dispatcher
	notifier   notify.SubmissionNotifier
}

// NewSubmissionService creates a SubmissionService. dispatcher handles the
// fire-and-forget notification of Submit; notifier is called synchronously
// by Resend.
func NewSubmissionService(repo repository.SubmissionRepository, dispatcher dispatch.Dispatcher, notifier notify.SubmissionNotifier) SubmissionService {
	return &submissionServiceImpl{repo: repo, dispatcher: dispatcher, notifier: notifier}
}

func (s *submissionServiceImpl) Submit(ctx context.Context, in model.SubmissionInput) (*model.Submission, error) {
	if missing := in.MissingFields(); len(missing) > 0 {
		metrics.RecordSubmission("invalid")
		return nil, &ValidationError{Fields: missing}
	}

	sub := in.NewSubmission()
	if err := s.repo.Insert(ctx, sub); err != nil {
		metrics.RecordSubmission("store_error")
		slog.Error("insert submission failed", "error", err)
		return nil, storeError("insert submission", err)
	}
	metrics.RecordSubmission("created")
	slog.Info("submission created", "submission_id", sub.ID)

	s.dispatcher.Dispatch(ctx, sub)
	return sub, nil
}

func (s *submissionServiceImpl) List(ctx context.Context) ([]*model.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError("list submissions", err)
	}
	return subs, nil
}

func (s *submissionServiceImpl) Resend(ctx context.Context, id int64) error {
	sub, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storeError("find submission", err)
	}

	err = s.notifier.NotifySubmission(ctx, sub)
	metrics.RecordNotification("resend", err)
	if err != nil {
		slog.Error("resend notification failed", "submission_id", id, "error", err)
		return &NotifyError{Err: err}
	}
	slog.Info("notification resent", "submission_id", id)
	return nil
}
