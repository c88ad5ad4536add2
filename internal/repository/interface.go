package repository

import (
	"context"

	"github.com/servicedesk/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// SubmissionRepository is the persistence capability for service requests.
// Insert must be atomic and must fill ID and CreatedAt from the store;
// List returns rows newest first (created_at DESC, id DESC).
type SubmissionRepository interface {
	Insert(ctx context.Context, sub *model.Submission) error
	List(ctx context.Context) ([]*model.Submission, error)
	FindByID(ctx context.Context, id int64) (*model.Submission, error)
}
