package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/servicedesk/backend/internal/model"
)

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

// Ensure PgSubmissionRepository implements SubmissionRepository at compile time.
var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

const pgSubmissionColumns = `id, name, COALESCE(contact_number, ''), COALESCE(service, ''),
	COALESCE(description, ''), created_at`

// submissionInsertLock is the advisory lock key serializing inserts.
const submissionInsertLock = 0x5eb1_7001

// Insert writes a service_requests row and populates sub.ID and sub.CreatedAt
// from the RETURNING clause. Inserts are serialized on an advisory lock and
// stamped with clock_timestamp() after acquiring it, so id order and
// created_at order agree across concurrent requests.
func (r *PgSubmissionRepository) Insert(ctx context.Context, sub *model.Submission) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, submissionInsertLock); err != nil {
		return fmt.Errorf("lock service_requests: %w", err)
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO service_requests (name, contact_number, service, description, created_at)
		 VALUES ($1, $2, $3, $4, clock_timestamp())
		 RETURNING id, created_at`,
		sub.FullName, sub.ContactNumber, sub.ServiceType, sub.ProjectDescription,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// List returns every submission, newest first.
func (r *PgSubmissionRepository) List(ctx context.Context) ([]*model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgSubmissionColumns+`
		 FROM service_requests
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		s, err := scanPgSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// FindByID returns the submission with the given id, or ErrNotFound.
func (r *PgSubmissionRepository) FindByID(ctx context.Context, id int64) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+pgSubmissionColumns+` FROM service_requests WHERE id = $1`, id)
	s, err := scanPgSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanPgSubmission(row pgx.Row) (*model.Submission, error) {
	var s model.Submission
	if err := row.Scan(&s.ID, &s.FullName, &s.ContactNumber, &s.ServiceType, &s.ProjectDescription, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
