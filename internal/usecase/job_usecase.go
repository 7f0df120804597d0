package usecase

import (
	"context"
	"strings"
	"time"

	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/logger"
	"shiftmatch/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const urgentWindow = 60 * time.Minute

type CreateJobInput struct {
	BusinessID     uuid.UUID
	BranchID       uuid.UUID
	Title          string
	Description    string
	SkillsRequired []string
	StartTime      time.Time
	EndTime        time.Time
	HourlyRate     float64
	MaxWorkers     int
}

type CreateJobResult struct {
	Job            job.Job
	MatchesCreated int
}

type JobUsecase interface {
	Create(ctx context.Context, in CreateJobInput) (CreateJobResult, error)
	Get(ctx context.Context, id uuid.UUID) (job.Job, error)
	// Urgent lists unfilled jobs starting within the next hour.
	Urgent(ctx context.Context) ([]job.Job, error)
}

type Jobs struct {
	jobs       repository.JobRepository
	branches   repository.BranchRepository
	dispatcher DispatchUsecase
	cache      OpenJobCache
	log        *zap.Logger

	now func() time.Time
}

func NewJobUsecase(jobs repository.JobRepository, branches repository.BranchRepository, dispatcher DispatchUsecase, cache OpenJobCache, log *zap.Logger) *Jobs {
	return &Jobs{
		jobs:       jobs,
		branches:   branches,
		dispatcher: dispatcher,
		cache:      cache,
		log:        logger.Component(log, "jobs"),
		now:        time.Now,
	}
}

func (u *Jobs) Create(ctx context.Context, in CreateJobInput) (CreateJobResult, error) {
	if in.BusinessID == uuid.Nil {
		return CreateJobResult{}, ErrUnauthorized
	}
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return CreateJobResult{}, invalidInput("title required")
	case in.BranchID == uuid.Nil:
		return CreateJobResult{}, invalidInput("branchId required")
	case in.StartTime.IsZero() || in.EndTime.IsZero():
		return CreateJobResult{}, invalidInput("startTime and endTime required")
	case !in.EndTime.After(in.StartTime):
		return CreateJobResult{}, invalidInput("endTime must be after startTime")
	case in.HourlyRate < 0:
		return CreateJobResult{}, invalidInput("hourlyRate must not be negative")
	case in.MaxWorkers < 0:
		return CreateJobResult{}, invalidInput("maxWorkers must be positive")
	}
	if in.MaxWorkers == 0 {
		in.MaxWorkers = 1
	}

	branch, err := u.branches.FindByID(ctx, in.BranchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CreateJobResult{}, ErrBranchNotFound
		}
		return CreateJobResult{}, internalErr(err, "load branch")
	}
	if branch.BusinessID != in.BusinessID {
		return CreateJobResult{}, ErrBranchNotFound
	}

	j := job.Job{
		BusinessID:     in.BusinessID,
		BranchID:       in.BranchID,
		Title:          in.Title,
		Description:    strings.TrimSpace(in.Description),
		SkillsRequired: normalizeSkills(in.SkillsRequired),
		StartTime:      in.StartTime.UTC(),
		EndTime:        in.EndTime.UTC(),
		HourlyRate:     in.HourlyRate,
		MaxWorkers:     in.MaxWorkers,
		Status:         job.StatusOpen,
	}
	j.TotalAmount = j.HourlyRate * j.Hours()

	created, err := u.jobs.Create(ctx, j)
	if err != nil {
		return CreateJobResult{}, internalErr(err, "create job")
	}
	created.Branch = &branch
	created.BusinessName = branch.BusinessName
	if u.cache != nil {
		u.cache.InvalidateOpenJobs(ctx)
	}

	out := CreateJobResult{Job: created}
	if u.dispatcher == nil {
		return out, nil
	}
	res, err := u.dispatcher.AutoMatch(ctx, created.ID)
	if err != nil {
		u.log.Error("auto match failed",
			zap.String(logger.FieldJobID, created.ID.String()),
			zap.Error(err),
		)
		return out, nil
	}
	out.MatchesCreated = len(res.Created)
	if out.MatchesCreated > 0 {
		out.Job.Status = job.StatusMatched
	}
	return out, nil
}

func (u *Jobs) Get(ctx context.Context, id uuid.UUID) (job.Job, error) {
	if id == uuid.Nil {
		return job.Job{}, ErrJobNotFound
	}
	j, err := u.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, internalErr(err, "load job")
	}
	return j, nil
}

func (u *Jobs) Urgent(ctx context.Context) ([]job.Job, error) {
	out, err := u.jobs.ListUrgent(ctx, u.now().UTC(), urgentWindow)
	if err != nil {
		return nil, internalErr(err, "list urgent jobs")
	}
	return out, nil
}

// normalizeSkills trims tags and drops blanks and case-insensitive repeats,
// keeping first spelling and order.
func normalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
