package repository

import (
	"context"
	"time"

	"shiftmatch/internal/database"
	"shiftmatch/internal/domain/job"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (job.Job, error)
	// ListOpen returns jobs that can still take workers and have not ended
	// by now, earliest start first.
	ListOpen(ctx context.Context, now time.Time) ([]job.Job, error)
	// ListUrgent returns unfilled jobs starting in [now, now+within].
	ListUrgent(ctx context.Context, now time.Time, within time.Duration) ([]job.Job, error)
	Create(ctx context.Context, j job.Job) (job.Job, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobSelect = `SELECT j.id, j.business_id, j.branch_id, j.title, j.description,
	j.start_time, j.end_time, j.hourly_rate, j.total_amount, j.max_workers, j.accepted_workers,
	j.status, j.created_at,
	COALESCE((SELECT string_agg(s.skill, E'\x1f' ORDER BY s.skill) FROM job_skills s WHERE s.job_id = j.id), ''),
	b.name, b.address, b.latitude, b.longitude, bz.name
FROM jobs j
JOIN branches b ON b.id = j.branch_id
JOIN businesses bz ON bz.id = j.business_id`

// activeMatches counts proposals that still hold a seat on the job.
const activeMatches = `(SELECT COUNT(1) FROM matches m WHERE m.job_id = j.id AND m.status IN ('PENDING', 'ACCEPTED'))`

func (r *PostgresJobRepository) FindByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, errors.Wrap(err, "find job")
	}
	return j, nil
}

func (r *PostgresJobRepository) ListOpen(ctx context.Context, now time.Time) ([]job.Job, error) {
	return r.list(ctx, jobSelect+`
		WHERE j.status IN ('OPEN', 'MATCHED')
		  AND j.accepted_workers < j.max_workers
		  AND j.end_time > $1
		ORDER BY j.start_time ASC, j.id ASC`,
		now,
	)
}

func (r *PostgresJobRepository) ListUrgent(ctx context.Context, now time.Time, within time.Duration) ([]job.Job, error) {
	return r.list(ctx, jobSelect+`
		WHERE j.status IN ('OPEN', 'MATCHED')
		  AND j.start_time >= $1
		  AND j.start_time <= $2
		  AND `+activeMatches+` < j.max_workers
		ORDER BY j.start_time ASC, j.id ASC`,
		now, now.Add(within),
	)
}

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = job.StatusOpen
	}

	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO jobs (id, business_id, branch_id, title, description, start_time, end_time,
				hourly_rate, total_amount, max_workers, accepted_workers, status)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0,$11)
			 RETURNING created_at`,
			j.ID, j.BusinessID, j.BranchID, j.Title, j.Description, j.StartTime, j.EndTime,
			j.HourlyRate, j.TotalAmount, j.MaxWorkers, string(j.Status),
		).Scan(&j.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "insert job")
		}

		for _, s := range j.SkillsRequired {
			if _, err := tx.Exec(ctx,
				`INSERT INTO job_skills (job_id, skill) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				j.ID, s,
			); err != nil {
				return errors.Wrap(err, "insert job skill")
			}
		}
		return nil
	})
	if err != nil {
		return job.Job{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) list(ctx context.Context, query string, args ...any) ([]job.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan job")
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanJob(row database.Row) (job.Job, error) {
	var (
		j      job.Job
		b      job.Branch
		status string
		skills string
	)
	err := row.Scan(
		&j.ID, &j.BusinessID, &j.BranchID, &j.Title, &j.Description,
		&j.StartTime, &j.EndTime, &j.HourlyRate, &j.TotalAmount, &j.MaxWorkers, &j.AcceptedWorkers,
		&status, &j.CreatedAt, &skills,
		&b.Name, &b.Address, &b.Latitude, &b.Longitude, &j.BusinessName,
	)
	if err != nil {
		return job.Job{}, err
	}
	j.Status = job.Status(status)
	j.SkillsRequired = splitSkills(skills)
	b.ID = j.BranchID
	b.BusinessID = j.BusinessID
	j.Branch = &b
	return j, nil
}
