package usecase

import (
	"context"
	"math"
	"time"

	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/domain/match"
	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/logger"
	"shiftmatch/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dispatchLockTTL = 30 * time.Second

// Locker is a best-effort mutual exclusion keyed by string. TryLock reports
// true when the backend is unreachable so callers fall back to the database
// constraints. Unlock only releases a lock still held under token.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

type MatchPublisher interface {
	PublishMatchProposed(ctx context.Context, ev match.ProposedEvent) error
}

type DispatchResult struct {
	Created []match.Match
}

type DispatchRules struct {
	TopN        int
	MinScore    float64
	Parallelism int
}

func DefaultDispatchRules() DispatchRules {
	return DispatchRules{TopN: 5, MinScore: 50, Parallelism: 8}
}

type DispatchUsecase interface {
	AutoMatch(ctx context.Context, jobID uuid.UUID) (DispatchResult, error)
}

type Dispatcher struct {
	jobs       repository.JobRepository
	workers    repository.WorkerRepository
	matches    repository.MatchRepository
	scorer     *matching.Scorer
	rules      DispatchRules
	locker     Locker
	publishers []MatchPublisher
	openJobs   OpenJobCache
	log        *zap.Logger

	now func() time.Time
}

type DispatcherDeps struct {
	Jobs       repository.JobRepository
	Workers    repository.WorkerRepository
	Matches    repository.MatchRepository
	Scorer     *matching.Scorer
	Rules      DispatchRules
	Locker     Locker
	Publishers []MatchPublisher
	OpenJobs   OpenJobCache
	Log        *zap.Logger
}

func NewDispatcher(d DispatcherDeps) *Dispatcher {
	if d.Rules.TopN <= 0 {
		d.Rules.TopN = DefaultDispatchRules().TopN
	}
	return &Dispatcher{
		jobs:       d.Jobs,
		workers:    d.Workers,
		matches:    d.Matches,
		scorer:     d.Scorer,
		rules:      d.Rules,
		locker:     d.Locker,
		publishers: d.Publishers,
		openJobs:   d.OpenJobs,
		log:        logger.Component(d.Log, "dispatch"),
		now:        time.Now,
	}
}

// AutoMatch proposes the best-scoring workers for an OPEN job and records
// them as PENDING matches. Jobs in any other status are left alone.
func (d *Dispatcher) AutoMatch(ctx context.Context, jobID uuid.UUID) (DispatchResult, error) {
	if jobID == uuid.Nil {
		return DispatchResult{}, invalidInput("job id required")
	}
	log := d.log.With(zap.String(logger.FieldJobID, jobID.String()))

	if d.locker != nil {
		key := "dispatch:lock:" + jobID.String()
		token, ok, err := d.locker.TryLock(ctx, key, dispatchLockTTL)
		switch {
		case err != nil:
			log.Warn("dispatch lock unavailable, continuing", zap.Error(err))
		case !ok:
			log.Info("dispatch already running for job")
			return DispatchResult{}, nil
		default:
			defer func() {
				if err := d.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn("release dispatch lock", zap.Error(err))
				}
			}()
		}
	}

	j, err := d.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DispatchResult{}, ErrJobNotFound
		}
		return DispatchResult{}, internalErr(err, "load job")
	}
	if j.Status != job.StatusOpen {
		log.Debug("job not open, skipping", zap.String(logger.FieldStatus, string(j.Status)))
		return DispatchResult{}, nil
	}

	pool, err := d.workers.ListBySkills(ctx, j.SkillsRequired)
	if err != nil {
		return DispatchResult{}, internalErr(err, "list workers")
	}

	ranked, err := scoreWorkers(ctx, d.scorer, pool, j, d.rules.Parallelism)
	if err != nil {
		return DispatchResult{}, internalErr(err, "score workers")
	}

	limit := d.rules.TopN
	if j.MaxWorkers > 0 && j.MaxWorkers < limit {
		limit = j.MaxWorkers
	}
	pending := make([]repository.PendingMatch, 0, limit)
	for _, s := range ranked {
		if len(pending) >= limit {
			break
		}
		// the threshold applies to the stored, rounded score
		score := math.Round(s.Result.Total)
		if score < d.rules.MinScore {
			break
		}
		pending = append(pending, repository.PendingMatch{
			WorkerID: s.Worker.ID,
			Score:    int(score),
		})
	}
	if len(pending) == 0 {
		log.Info("no eligible workers", zap.Int(logger.FieldCount, len(pool)))
		return DispatchResult{Created: []match.Match{}}, nil
	}

	now := d.now().UTC()
	created, err := d.matches.CreatePending(ctx, j.ID, pending, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DispatchResult{}, ErrJobNotFound
		}
		return DispatchResult{}, internalErr(err, "create pending matches")
	}
	log.Info("matches proposed", zap.Int(logger.FieldCount, len(created)), zap.Int("candidates", len(pool)))

	if len(created) > 0 && d.openJobs != nil {
		d.openJobs.InvalidateOpenJobs(ctx)
	}
	d.publish(ctx, log, j, created, now)

	return DispatchResult{Created: created}, nil
}

func (d *Dispatcher) publish(ctx context.Context, log *zap.Logger, j job.Job, created []match.Match, at time.Time) {
	for _, m := range created {
		ev := match.ProposedEvent{
			MatchID:    m.ID,
			WorkerID:   m.WorkerID,
			JobID:      j.ID,
			JobTitle:   j.Title,
			StartTime:  j.StartTime,
			EndTime:    j.EndTime,
			HourlyRate: j.HourlyRate,
			Score:      m.Score,
			ProposedAt: at,
		}
		for _, p := range d.publishers {
			if p == nil {
				continue
			}
			if err := p.PublishMatchProposed(ctx, ev); err != nil {
				log.Warn("publish match proposed",
					zap.String(logger.FieldMatchID, m.ID.String()),
					zap.Error(err),
				)
			}
		}
	}
}
