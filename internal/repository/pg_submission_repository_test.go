package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/servicedesk/backend/internal/model"
)

// Requires a migrated database; set TEST_DATABASE_URL to run.
func TestPgSubmissionRepository_InsertListFind(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if testing.Short() || dbURL == "" {
		t.Skip("skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer pool.Close()

	repo := NewPgSubmissionRepository(pool)

	first := newSub("pg-first")
	second := newSub("pg-second")
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.Insert(ctx, second); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if second.CreatedAt.Before(first.CreatedAt) {
		t.Errorf("created_at went backwards")
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) < 2 || list[0].ID != second.ID {
		t.Errorf("expected newest row %d first", second.ID)
	}

	found, err := repo.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.FullName != "pg-first" {
		t.Errorf("expected name pg-first, got %q", found.FullName)
	}

	if _, err := repo.FindByID(ctx, -1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Requires a migrated database; set TEST_DATABASE_URL to run.
func TestPgSubmissionRepository_ConcurrentInsertsKeepOrder(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if testing.Short() || dbURL == "" {
		t.Skip("skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer pool.Close()

	repo := NewPgSubmissionRepository(pool)

	const n = 20
	subs := make([]*model.Submission, n)
	var wg sync.WaitGroup
	for i := range subs {
		subs[i] = newSub(fmt.Sprintf("pg-concurrent-%d", i))
		wg.Add(1)
		go func(s *model.Submission) {
			defer wg.Done()
			if err := repo.Insert(ctx, s); err != nil {
				t.Errorf("Insert failed: %v", err)
			}
		}(subs[i])
	}
	wg.Wait()

	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	for i := 1; i < n; i++ {
		if subs[i].CreatedAt.Before(subs[i-1].CreatedAt) {
			t.Errorf("id %d has created_at before id %d", subs[i].ID, subs[i-1].ID)
		}
	}
}
