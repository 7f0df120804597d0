package usecase

import (
	"context"
	"strings"
	"time"

	"shiftmatch/internal/domain/match"
	"shiftmatch/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type ListMatchesParams struct {
	Status string
	JobID  uuid.UUID
}

type MatchUsecase interface {
	// List returns the caller's matches: a worker sees proposals made to
	// them, a business sees matches on its jobs.
	List(ctx context.Context, caller Caller, p ListMatchesParams) ([]match.Match, error)
	// Decide records a worker's answer to a PENDING proposal.
	Decide(ctx context.Context, caller Caller, matchID uuid.UUID, status string) (match.Match, error)
}

type Matches struct {
	matches repository.MatchRepository
	cache   OpenJobCache

	now func() time.Time
}

func NewMatchUsecase(matches repository.MatchRepository, cache OpenJobCache) *Matches {
	return &Matches{matches: matches, cache: cache, now: time.Now}
}

func (u *Matches) List(ctx context.Context, caller Caller, p ListMatchesParams) ([]match.Match, error) {
	f := repository.MatchFilter{}
	switch {
	case caller.IsWorker():
		f.WorkerID = &caller.ID
	case caller.IsBusiness():
		f.BusinessID = &caller.ID
	default:
		return nil, ErrUnauthorized
	}

	if s := strings.TrimSpace(p.Status); s != "" {
		st, ok := match.ParseStatus(strings.ToUpper(s))
		if !ok {
			return nil, invalidInput("unknown status %q", s)
		}
		f.Status = &st
	}
	if p.JobID != uuid.Nil {
		f.JobID = &p.JobID
	}

	out, err := u.matches.List(ctx, f)
	if err != nil {
		return nil, internalErr(err, "list matches")
	}
	return out, nil
}

func (u *Matches) Decide(ctx context.Context, caller Caller, matchID uuid.UUID, status string) (match.Match, error) {
	if !caller.IsWorker() {
		return match.Match{}, ErrUnauthorized
	}
	to, ok := match.ParseStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !ok || (to != match.StatusAccepted && to != match.StatusRejected) {
		return match.Match{}, invalidInput("status must be ACCEPTED or REJECTED")
	}
	if matchID == uuid.Nil {
		return match.Match{}, ErrMatchNotFound
	}

	m, err := u.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return match.Match{}, ErrMatchNotFound
		}
		return match.Match{}, internalErr(err, "load match")
	}
	if m.WorkerID != caller.ID {
		return match.Match{}, ErrMatchNotFound
	}
	if !match.CanTransition(m.Status, to) {
		return match.Match{}, errors.Wrapf(ErrInvalidTransition, "%s to %s", m.Status, to)
	}

	out, err := u.matches.Decide(ctx, m.ID, m.Status, to, u.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return match.Match{}, errors.Mark(err, ErrInvalidTransition)
		}
		return match.Match{}, internalErr(err, "decide match")
	}
	if to == match.StatusAccepted && u.cache != nil {
		u.cache.InvalidateOpenJobs(ctx)
	}
	return out, nil
}
