package repository

import (
	"context"
	"fmt"
	"strings"

	"shiftmatch/internal/database"
	"shiftmatch/internal/domain/worker"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type WorkerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (worker.Worker, error)
	// ListBySkills returns workers holding at least one of skills, compared
	// case-insensitively. An empty list returns every worker.
	ListBySkills(ctx context.Context, skills []string) ([]worker.Worker, error)
}

type PostgresWorkerRepository struct {
	db database.DB
}

func NewPostgresWorkerRepository(db database.DB) *PostgresWorkerRepository {
	return &PostgresWorkerRepository{db: db}
}

const workerColumns = `w.id, w.name, w.latitude, w.longitude, w.rating,
	COALESCE((SELECT string_agg(ws.skill, E'\x1f' ORDER BY ws.skill) FROM worker_skills ws WHERE ws.worker_id = w.id), ''),
	(SELECT COUNT(1) FROM matches m WHERE m.worker_id = w.id AND m.status = 'COMPLETED'),
	w.created_at`

func (r *PostgresWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (worker.Worker, error) {
	row := r.db.QueryRow(ctx, `SELECT `+workerColumns+` FROM workers w WHERE w.id = $1`, id)
	w, err := scanWorker(row)
	if err != nil {
		if database.IsNoRows(err) {
			return worker.Worker{}, ErrNotFound
		}
		return worker.Worker{}, errors.Wrap(err, "find worker")
	}
	return w, nil
}

func (r *PostgresWorkerRepository) ListBySkills(ctx context.Context, skills []string) ([]worker.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers w`

	args := make([]any, 0, len(skills))
	holders := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		args = append(args, s)
		holders = append(holders, fmt.Sprintf("$%d", len(args)))
	}
	if len(holders) > 0 {
		query += ` WHERE EXISTS (SELECT 1 FROM worker_skills ws WHERE ws.worker_id = w.id AND lower(ws.skill) IN (` +
			strings.Join(holders, ", ") + `))`
	}
	query += ` ORDER BY w.id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list workers")
	}
	defer rows.Close()

	out := make([]worker.Worker, 0)
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan worker")
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanWorker(row database.Row) (worker.Worker, error) {
	var (
		w      worker.Worker
		skills string
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Latitude, &w.Longitude, &w.Rating, &skills, &w.CompletedJobs, &w.CreatedAt); err != nil {
		return worker.Worker{}, err
	}
	w.Skills = splitSkills(skills)
	return w, nil
}
