package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/servicedesk/backend/internal/model"
)

// mysqlSchema is the service_requests table as deployed on MySQL (column Id, nullable details).
const mysqlSchema = `CREATE TABLE IF NOT EXISTS service_requests (
	Id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	contact_number VARCHAR(50),
	service VARCHAR(100),
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

const mysqlSelectSubmission = `SELECT Id AS id, name,
	COALESCE(contact_number, '') AS contact_number,
	COALESCE(service, '') AS service,
	COALESCE(description, '') AS description,
	created_at
	FROM service_requests`

// MySQLSubmissionRepository is the MySQL implementation of SubmissionRepository.
type MySQLSubmissionRepository struct {
	db *sqlx.DB
}

// NewMySQLSubmissionRepository creates a MySQLSubmissionRepository backed by db.
func NewMySQLSubmissionRepository(db *sqlx.DB) *MySQLSubmissionRepository {
	return &MySQLSubmissionRepository{db: db}
}

var _ SubmissionRepository = (*MySQLSubmissionRepository)(nil)

// EnsureSchema creates the service_requests table if it does not exist.
func (r *MySQLSubmissionRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, mysqlSchema)
	return err
}

// Ping checks the connection pool.
func (r *MySQLSubmissionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert writes the row and reads back the generated id and created_at inside
// one transaction so a failed read-back leaves no row behind.
func (r *MySQLSubmissionRepository) Insert(ctx context.Context, sub *model.Submission) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO service_requests (name, contact_number, service, description) VALUES (?, ?, ?, ?)`,
		sub.FullName, sub.ContactNumber, sub.ServiceType, sub.ProjectDescription,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	if err = tx.GetContext(ctx, &sub.CreatedAt, `SELECT created_at FROM service_requests WHERE Id = ?`, id); err != nil {
		return fmt.Errorf("read created_at: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	sub.ID = id
	return nil
}

// List returns every submission, newest first.
func (r *MySQLSubmissionRepository) List(ctx context.Context) ([]*model.Submission, error) {
	var subs []*model.Submission
	if err := r.db.SelectContext(ctx, &subs, mysqlSelectSubmission+` ORDER BY created_at DESC, Id DESC`); err != nil {
		return nil, err
	}
	return subs, nil
}

// FindByID returns the submission with the given id, or ErrNotFound.
func (r *MySQLSubmissionRepository) FindByID(ctx context.Context, id int64) (*model.Submission, error) {
	var s model.Submission
	err := r.db.GetContext(ctx, &s, mysqlSelectSubmission+` WHERE Id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
