package usecase

import (
	"context"

	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const (
	defaultCandidateLimit = 20
	maxCandidateLimit     = 100
)

type CompatibilityUsecase interface {
	Score(ctx context.Context, workerID, jobID uuid.UUID) (matching.Result, error)
	// Candidates ranks the workers eligible for a job by compatibility. Only
	// the business that posted the job may see them.
	Candidates(ctx context.Context, caller Caller, jobID uuid.UUID, limit int) ([]ScoredWorker, error)
}

type Compatibility struct {
	workers     repository.WorkerRepository
	jobs        repository.JobRepository
	scorer      *matching.Scorer
	parallelism int
}

func NewCompatibilityUsecase(workers repository.WorkerRepository, jobs repository.JobRepository, scorer *matching.Scorer, parallelism int) *Compatibility {
	return &Compatibility{workers: workers, jobs: jobs, scorer: scorer, parallelism: parallelism}
}

func (u *Compatibility) Score(ctx context.Context, workerID, jobID uuid.UUID) (matching.Result, error) {
	if workerID == uuid.Nil {
		return matching.Result{}, ErrUnauthorized
	}
	if jobID == uuid.Nil {
		return matching.Result{}, ErrJobNotFound
	}

	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return matching.Result{}, ErrJobNotFound
		}
		return matching.Result{}, internalErr(err, "load job")
	}

	w, err := u.workers.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return matching.Result{}, ErrWorkerNotFound
		}
		return matching.Result{}, internalErr(err, "load worker")
	}

	res, err := u.scorer.Score(ctx, toMatchingWorker(w), toMatchingJob(j))
	if err != nil {
		return matching.Result{}, internalErr(err, "score")
	}
	return res, nil
}

func (u *Compatibility) Candidates(ctx context.Context, caller Caller, jobID uuid.UUID, limit int) ([]ScoredWorker, error) {
	if !caller.IsBusiness() {
		return nil, ErrUnauthorized
	}
	if jobID == uuid.Nil {
		return nil, ErrJobNotFound
	}
	if limit < 0 {
		return nil, invalidInput("limit %d", limit)
	}
	if limit == 0 {
		limit = defaultCandidateLimit
	}
	if limit > maxCandidateLimit {
		limit = maxCandidateLimit
	}

	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, internalErr(err, "load job")
	}
	if j.BusinessID != caller.ID {
		return nil, ErrJobNotFound
	}

	pool, err := u.workers.ListBySkills(ctx, j.SkillsRequired)
	if err != nil {
		return nil, internalErr(err, "list workers")
	}

	ranked, err := scoreWorkers(ctx, u.scorer, pool, j, u.parallelism)
	if err != nil {
		return nil, internalErr(err, "score workers")
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
