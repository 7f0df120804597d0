package matching

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidSlot = errors.New("invalid time slot")

// TimeSlot is a window a worker declared free. It is matching input only and
// never stored.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !end.After(start) {
		return TimeSlot{}, errors.Wrapf(ErrInvalidSlot, "end %s not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return TimeSlot{Start: start, End: end}, nil
}

// ParseTimeSlot reads a slot from "2006-01-02" and "15:04" strings in loc.
func ParseTimeSlot(date, startClock, endClock string, loc *time.Location) (TimeSlot, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startClock, loc)
	if err != nil {
		return TimeSlot{}, errors.Wrapf(ErrInvalidSlot, "start: %v", err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", date+" "+endClock, loc)
	if err != nil {
		return TimeSlot{}, errors.Wrapf(ErrInvalidSlot, "end: %v", err)
	}
	return NewTimeSlot(start, end)
}

func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

type SlotRules struct {
	MinOverlap  float64
	TimeWeight  float64
	SkillWeight float64
	MinCombined float64
	PerSlot     int
}

func DefaultSlotRules() SlotRules {
	return SlotRules{
		MinOverlap:  50,
		TimeWeight:  0.6,
		SkillWeight: 0.4,
		MinCombined: 60,
		PerSlot:     3,
	}
}

type Candidate struct {
	Job      Job
	Overlap  float64
	Skill    float64
	Combined float64
}

type SlotCandidates struct {
	Slot       TimeSlot
	Candidates []Candidate
}

// OverlapPercent is the share of the shorter of the slot and [start, end)
// that the two have in common. A job that fits inside the slot scores 100.
func OverlapPercent(slot TimeSlot, start, end time.Time) float64 {
	d := slot.Duration()
	if jd := end.Sub(start); jd < d {
		d = jd
	}
	if d <= 0 {
		return 0
	}
	from := slot.Start
	if start.After(from) {
		from = start
	}
	to := slot.End
	if end.Before(to) {
		to = end
	}
	if !to.After(from) {
		return 0
	}
	return float64(to.Sub(from)) / float64(d) * 100
}

// MatchSlots evaluates every slot against the job pool concurrently. Slots
// with no surviving candidate are left out; output keeps input slot order.
func MatchSlots(ctx context.Context, rules SlotRules, slots []TimeSlot, jobs []Job, workerSkills []string) ([]SlotCandidates, error) {
	results := make([][]Candidate, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = matchSlot(rules, slot, jobs, workerSkills)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]SlotCandidates, 0, len(slots))
	for i, slot := range slots {
		if len(results[i]) == 0 {
			continue
		}
		out = append(out, SlotCandidates{Slot: slot, Candidates: results[i]})
	}
	return out, nil
}

func matchSlot(rules SlotRules, slot TimeSlot, jobs []Job, workerSkills []string) []Candidate {
	found := make([]Candidate, 0)
	for _, j := range jobs {
		overlap := OverlapPercent(slot, j.Start, j.End)
		if overlap < rules.MinOverlap {
			continue
		}
		skill := SkillScore(workerSkills, j.Skills)
		combined := overlap*rules.TimeWeight + skill*rules.SkillWeight
		if combined <= rules.MinCombined {
			continue
		}
		found = append(found, Candidate{Job: j, Overlap: overlap, Skill: skill, Combined: combined})
	}

	sort.SliceStable(found, func(a, b int) bool {
		return found[a].Combined > found[b].Combined
	})

	if rules.PerSlot > 0 && len(found) > rules.PerSlot {
		found = found[:rules.PerSlot]
	}
	return found
}
