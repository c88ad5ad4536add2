package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/servicedesk/backend/internal/model"
)

// MemorySubmissionRepository keeps submissions in process memory. It is used
// for local development and tests; data is lost on restart.
type MemorySubmissionRepository struct {
	mu     sync.Mutex
	rows   []model.Submission
	nextID int64
	now    func() time.Time
}

// NewMemorySubmissionRepository creates an empty in-memory repository.
func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{nextID: 1, now: time.Now}
}

var _ SubmissionRepository = (*MemorySubmissionRepository)(nil)

// Ping always succeeds.
func (r *MemorySubmissionRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Insert assigns the next id and the current time. created_at never goes
// backwards relative to the previous row even if the wall clock does.
func (r *MemorySubmissionRepository) Insert(ctx context.Context, sub *model.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	if n := len(r.rows); n > 0 && createdAt.Before(r.rows[n-1].CreatedAt) {
		createdAt = r.rows[n-1].CreatedAt
	}
	sub.ID = r.nextID
	sub.CreatedAt = createdAt
	r.nextID++
	r.rows = append(r.rows, *sub)
	return nil
}

// List returns copies of every row, newest first.
func (r *MemorySubmissionRepository) List(ctx context.Context) ([]*model.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	out := make([]*model.Submission, 0, len(r.rows))
	for i := range r.rows {
		s := r.rows[i]
		out = append(out, &s)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// FindByID returns a copy of the row with the given id, or ErrNotFound.
func (r *MemorySubmissionRepository) FindByID(ctx context.Context, id int64) (*model.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			s := r.rows[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// Len returns the number of stored rows.
func (r *MemorySubmissionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
