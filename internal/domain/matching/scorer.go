package matching

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const (
	DefaultMaxDistanceKm = 50.0
	neutralLocation      = 50.0
	weightTolerance      = 1e-6
)

var ErrInvalidWeights = errors.New("invalid scoring weights")

type Worker struct {
	ID            uuid.UUID
	Skills        []string
	Location      *Point
	Rating        float64
	CompletedJobs int
}

type Job struct {
	ID          uuid.UUID
	Skills      []string
	Start       time.Time
	End         time.Time
	HourlyRate  float64
	TotalAmount float64
	Site        *Point
	MaxWorkers  int
	Accepted    int
}

// Hours is the scheduled duration of the job.
func (j Job) Hours() float64 {
	return j.End.Sub(j.Start).Hours()
}

// Weights is the per-axis weighting of a compatibility score. Treat it as a
// value: a Scorer copies it at construction.
type Weights struct {
	Skill        float64
	Location     float64
	Rating       float64
	Availability float64
}

func DefaultWeights() Weights {
	return Weights{Skill: 0.4, Location: 0.3, Rating: 0.2, Availability: 0.1}
}

func (w Weights) Sum() float64 {
	return w.Skill + w.Location + w.Rating + w.Availability
}

// Validate keeps totals inside [0,100]: no negative weight, sum of 1.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Location < 0 || w.Rating < 0 || w.Availability < 0 {
		return errors.Wrap(ErrInvalidWeights, "negative weight")
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return errors.Wrapf(ErrInvalidWeights, "weights sum to %.4f, want 1", sum)
	}
	return nil
}

type Policy struct {
	Weights       Weights
	MaxDistanceKm float64
}

func DefaultPolicy() Policy {
	return Policy{Weights: DefaultWeights(), MaxDistanceKm: DefaultMaxDistanceKm}
}

type Breakdown struct {
	Skill        float64
	Location     float64
	Rating       float64
	Availability float64
}

type Result struct {
	Total     float64
	Breakdown Breakdown
}

// ConflictChecker reports whether the worker already holds an accepted
// engagement whose interval contains at.
type ConflictChecker interface {
	HasAcceptedConflict(ctx context.Context, workerID uuid.UUID, at time.Time) (bool, error)
}

type Scorer struct {
	weights       Weights
	maxDistanceKm float64
	conflicts     ConflictChecker
}

// NewScorer builds a scorer for one policy. conflicts may be nil, in which
// case no worker is ever considered double-booked.
func NewScorer(p Policy, conflicts ConflictChecker) (*Scorer, error) {
	if err := p.Weights.Validate(); err != nil {
		return nil, err
	}
	maxKm := p.MaxDistanceKm
	if maxKm <= 0 {
		maxKm = DefaultMaxDistanceKm
	}
	return &Scorer{weights: p.Weights, maxDistanceKm: maxKm, conflicts: conflicts}, nil
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

func (s *Scorer) Score(ctx context.Context, w Worker, j Job) (Result, error) {
	conflict := false
	if s.conflicts != nil {
		var err error
		conflict, err = s.conflicts.HasAcceptedConflict(ctx, w.ID, j.Start)
		if err != nil {
			return Result{}, errors.Wrapf(err, "availability check worker=%s", w.ID)
		}
	}

	b := Breakdown{
		Skill:        SkillScore(w.Skills, j.Skills),
		Location:     LocationScore(w.Location, j.Site, s.maxDistanceKm),
		Rating:       RatingScore(w.Rating),
		Availability: AvailabilityScore(conflict, w.CompletedJobs),
	}

	total := b.Skill*s.weights.Skill +
		b.Location*s.weights.Location +
		b.Rating*s.weights.Rating +
		b.Availability*s.weights.Availability

	return Result{Total: clampScore(total), Breakdown: b}, nil
}

func LocationScore(worker, site *Point, maxDistanceKm float64) float64 {
	if worker == nil || site == nil {
		return neutralLocation
	}
	d := DistanceKm(*worker, *site)
	switch {
	case d <= 5:
		return 100
	case d <= 10:
		return 90
	case d <= 20:
		return 70
	case d <= 30:
		return 50
	case d <= maxDistanceKm:
		return 30
	default:
		return 0
	}
}

func RatingScore(rating float64) float64 {
	return clampScore(rating / 5 * 100)
}

func AvailabilityScore(conflict bool, completed int) float64 {
	if conflict {
		return 0
	}
	switch {
	case completed >= 50:
		return 100
	case completed >= 20:
		return 80
	case completed >= 10:
		return 60
	case completed >= 5:
		return 40
	case completed > 0:
		return 20
	default:
		return 10
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
