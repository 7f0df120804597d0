package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shiftmatch/internal/database"
	"shiftmatch/internal/domain/match"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type MatchFilter struct {
	WorkerID   *uuid.UUID
	BusinessID *uuid.UUID
	JobID      *uuid.UUID
	Status     *match.Status
}

type PendingMatch struct {
	WorkerID uuid.UUID
	Score    int
}

type MatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (match.Match, error)
	List(ctx context.Context, f MatchFilter) ([]match.Match, error)
	// HasAcceptedConflict reports whether the worker holds an accepted
	// match whose job interval contains at.
	HasAcceptedConflict(ctx context.Context, workerID uuid.UUID, at time.Time) (bool, error)
	// CreatePending inserts PENDING matches for an OPEN job and moves it to
	// MATCHED, all in one transaction. Pairs that already exist are skipped;
	// only the rows actually created are returned.
	CreatePending(ctx context.Context, jobID uuid.UUID, pending []PendingMatch, now time.Time) ([]match.Match, error)
	// Decide moves a match from one status to another. Accepting also takes
	// a seat on the job and moves it to IN_PROGRESS. ErrConflict is returned
	// when the match is no longer in from or the job is full.
	Decide(ctx context.Context, id uuid.UUID, from, to match.Status, now time.Time) (match.Match, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

const matchColumns = `m.id, m.worker_id, m.job_id, m.status, m.score, m.matched_at, m.accepted_at`

func (r *PostgresMatchRepository) FindByID(ctx context.Context, id uuid.UUID) (match.Match, error) {
	m, err := scanMatch(r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches m WHERE m.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return match.Match{}, ErrNotFound
		}
		return match.Match{}, errors.Wrap(err, "find match")
	}
	return m, nil
}

func (r *PostgresMatchRepository) List(ctx context.Context, f MatchFilter) ([]match.Match, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.WorkerID != nil {
		add("m.worker_id = $%d", *f.WorkerID)
	}
	if f.BusinessID != nil {
		add("j.business_id = $%d", *f.BusinessID)
	}
	if f.JobID != nil {
		add("m.job_id = $%d", *f.JobID)
	}
	if f.Status != nil {
		add("m.status = $%d", string(*f.Status))
	}

	query := `SELECT ` + matchColumns + ` FROM matches m JOIN jobs j ON j.id = m.job_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY m.matched_at DESC, m.id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list matches")
	}
	defer rows.Close()

	out := make([]match.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan match")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMatchRepository) HasAcceptedConflict(ctx context.Context, workerID uuid.UUID, at time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM matches m
			JOIN jobs j ON j.id = m.job_id
			WHERE m.worker_id = $1
			  AND m.status = 'ACCEPTED'
			  AND j.start_time <= $2
			  AND j.end_time >= $2)`,
		workerID, at,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "check accepted conflict")
	}
	return exists, nil
}

func (r *PostgresMatchRepository) CreatePending(ctx context.Context, jobID uuid.UUID, pending []PendingMatch, now time.Time) ([]match.Match, error) {
	if len(pending) == 0 {
		return []match.Match{}, nil
	}

	created := make([]match.Match, 0, len(pending))
	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1 FOR UPDATE`, jobID).Scan(&status)
		if err != nil {
			if database.IsNoRows(err) {
				return ErrNotFound
			}
			return errors.Wrap(err, "lock job")
		}
		if status != "OPEN" {
			return nil
		}

		for _, p := range pending {
			m := match.Match{
				ID:        uuid.New(),
				WorkerID:  p.WorkerID,
				JobID:     jobID,
				Status:    match.StatusPending,
				Score:     p.Score,
				MatchedAt: now,
			}
			n, err := tx.Exec(ctx,
				`INSERT INTO matches (id, worker_id, job_id, status, score, matched_at)
				 VALUES ($1,$2,$3,$4,$5,$6)
				 ON CONFLICT (worker_id, job_id) DO NOTHING`,
				m.ID, m.WorkerID, m.JobID, string(m.Status), m.Score, m.MatchedAt,
			)
			if err != nil {
				return errors.Wrapf(err, "insert match worker=%s", p.WorkerID)
			}
			if n == 1 {
				created = append(created, m)
			}
		}

		if len(created) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE jobs SET status = 'MATCHED' WHERE id = $1 AND status = 'OPEN'`, jobID); err != nil {
			return errors.Wrap(err, "mark job matched")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PostgresMatchRepository) Decide(ctx context.Context, id uuid.UUID, from, to match.Status, now time.Time) (match.Match, error) {
	var out match.Match
	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		var acceptedAt *time.Time
		if to == match.StatusAccepted {
			acceptedAt = &now
		}

		m, err := scanMatch(tx.QueryRow(ctx,
			`UPDATE matches m SET status = $2, accepted_at = COALESCE($3, m.accepted_at)
			 WHERE m.id = $1 AND m.status = $4
			 RETURNING `+matchColumns,
			id, string(to), acceptedAt, string(from),
		))
		if err != nil {
			if database.IsNoRows(err) {
				return ErrConflict
			}
			return errors.Wrap(err, "update match")
		}

		if to == match.StatusAccepted {
			n, err := tx.Exec(ctx,
				`UPDATE jobs SET accepted_workers = accepted_workers + 1, status = 'IN_PROGRESS'
				 WHERE id = $1 AND accepted_workers < max_workers`,
				m.JobID,
			)
			if err != nil {
				return errors.Wrap(err, "take job seat")
			}
			if n == 0 {
				return errors.Wrap(ErrConflict, "job is full")
			}
		}

		out = m
		return nil
	})
	if err != nil {
		return match.Match{}, err
	}
	return out, nil
}

func scanMatch(row database.Row) (match.Match, error) {
	var (
		m      match.Match
		status string
	)
	if err := row.Scan(&m.ID, &m.WorkerID, &m.JobID, &status, &m.Score, &m.MatchedAt, &m.AcceptedAt); err != nil {
		return match.Match{}, err
	}
	m.Status = match.Status(status)
	return m, nil
}
