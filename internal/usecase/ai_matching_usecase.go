package usecase

import (
	"context"
	"strings"
	"time"

	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// OpenJobCache holds the fillable job pool between schedule requests.
// Implementations swallow their own failures.
type OpenJobCache interface {
	GetOpenJobs(ctx context.Context) ([]job.Job, bool)
	SetOpenJobs(ctx context.Context, jobs []job.Job)
	InvalidateOpenJobs(ctx context.Context)
}

type SlotInput struct {
	Date      string
	StartTime string
	EndTime   string
}

type AIMatchingInput struct {
	WorkerID uuid.UUID
	Slots    []SlotInput
	// Location overrides the worker's stored position when set.
	Location *matching.Point
}

type ProposalJob struct {
	Job   job.Job
	Score float64
}

type Proposal struct {
	Type           matching.ProposalType
	Jobs           []ProposalJob
	TotalEarnings  float64
	TotalHours     float64
	RouteOptimized bool
}

type AIMatchingUsecase interface {
	Propose(ctx context.Context, in AIMatchingInput) ([]Proposal, error)
}

type AIMatching struct {
	workers  repository.WorkerRepository
	jobs     repository.JobRepository
	cache    OpenJobCache
	slots    matching.SlotRules
	assembly matching.AssemblyRules

	now func() time.Time
}

func NewAIMatchingUsecase(workers repository.WorkerRepository, jobs repository.JobRepository, cache OpenJobCache, loc *time.Location) *AIMatching {
	assembly := matching.DefaultAssemblyRules()
	if loc != nil {
		assembly.Location = loc
	}
	return &AIMatching{
		workers:  workers,
		jobs:     jobs,
		cache:    cache,
		slots:    matching.DefaultSlotRules(),
		assembly: assembly,
		now:      time.Now,
	}
}

func (u *AIMatching) Propose(ctx context.Context, in AIMatchingInput) ([]Proposal, error) {
	if in.WorkerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if len(in.Slots) == 0 {
		return nil, invalidInput("at least one time slot required")
	}

	slots := make([]matching.TimeSlot, 0, len(in.Slots))
	for i, s := range in.Slots {
		ts, err := matching.ParseTimeSlot(strings.TrimSpace(s.Date), strings.TrimSpace(s.StartTime), strings.TrimSpace(s.EndTime), u.assembly.Location)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "slot %d", i), ErrInvalidInput)
		}
		slots = append(slots, ts)
	}
	if in.Location != nil && !validPoint(*in.Location) {
		return nil, invalidInput("location out of range")
	}

	w, err := u.workers.FindByID(ctx, in.WorkerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, internalErr(err, "load worker")
	}

	pool, err := u.openJobs(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]job.Job, len(pool))
	engineJobs := make([]matching.Job, 0, len(pool))
	for _, j := range pool {
		byID[j.ID] = j
		engineJobs = append(engineJobs, toMatchingJob(j))
	}

	perSlot, err := matching.MatchSlots(ctx, u.slots, slots, engineJobs, w.Skills)
	if err != nil {
		return nil, internalErr(err, "match slots")
	}

	loc := in.Location
	if loc == nil {
		if lat, lng, ok := w.Location(); ok {
			loc = &matching.Point{Lat: lat, Lng: lng}
		}
	}

	proposals := matching.BuildProposals(u.assembly, perSlot, loc)

	out := make([]Proposal, 0, len(proposals))
	for _, p := range proposals {
		pj := make([]ProposalJob, 0, len(p.Jobs))
		for _, c := range p.Jobs {
			pj = append(pj, ProposalJob{Job: byID[c.Job.ID], Score: c.Combined})
		}
		out = append(out, Proposal{
			Type:           p.Type,
			Jobs:           pj,
			TotalEarnings:  p.TotalEarnings,
			TotalHours:     p.TotalHours,
			RouteOptimized: p.RouteOptimized,
		})
	}
	return out, nil
}

// openJobs reads the fillable pool through the cache, dropping anything that
// ended since it was cached.
func (u *AIMatching) openJobs(ctx context.Context) ([]job.Job, error) {
	now := u.now()
	if u.cache != nil {
		if cached, ok := u.cache.GetOpenJobs(ctx); ok {
			out := make([]job.Job, 0, len(cached))
			for _, j := range cached {
				if j.EndTime.After(now) && j.Status.Fillable() && j.AcceptedWorkers < j.MaxWorkers {
					out = append(out, j)
				}
			}
			return out, nil
		}
	}

	pool, err := u.jobs.ListOpen(ctx, now)
	if err != nil {
		return nil, internalErr(err, "list open jobs")
	}
	if u.cache != nil {
		u.cache.SetOpenJobs(ctx, pool)
	}
	return pool, nil
}

func validPoint(p matching.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
