package matching

import (
	"sort"
	"time"
)

type ProposalType string

const (
	PerfectMatch  ProposalType = "PERFECT_MATCH"
	SmartSchedule ProposalType = "SMART_SCHEDULE"
)

type Proposal struct {
	Type           ProposalType
	Jobs           []Candidate
	TotalEarnings  float64
	TotalHours     float64
	RouteOptimized bool
}

type AssemblyRules struct {
	PerfectScore float64
	MaxPerfect   int
	MaxLegKm     float64
	MaxProposals int
	// Location decides which calendar day a job belongs to.
	Location *time.Location
}

func DefaultAssemblyRules() AssemblyRules {
	return AssemblyRules{
		PerfectScore: 90,
		MaxPerfect:   3,
		MaxLegKm:     20,
		MaxProposals: 5,
		Location:     time.UTC,
	}
}

// BuildProposals turns per-slot candidates into ranked proposals: single-job
// perfect matches first, then multi-job day schedules, each class by
// descending earnings.
func BuildProposals(rules AssemblyRules, slots []SlotCandidates, workerLocation *Point) []Proposal {
	perfect := perfectMatches(rules, slots)
	smart := smartSchedules(rules, slots, workerLocation)

	out := make([]Proposal, 0, len(perfect)+len(smart))
	out = append(out, perfect...)
	out = append(out, smart...)

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Type == PerfectMatch, out[j].Type == PerfectMatch
		if pi != pj {
			return pi
		}
		return out[i].TotalEarnings > out[j].TotalEarnings
	})

	if rules.MaxProposals > 0 && len(out) > rules.MaxProposals {
		out = out[:rules.MaxProposals]
	}
	return out
}

func perfectMatches(rules AssemblyRules, slots []SlotCandidates) []Proposal {
	out := make([]Proposal, 0)
	for _, sc := range slots {
		for _, c := range sc.Candidates {
			if c.Combined < rules.PerfectScore {
				continue
			}
			if rules.MaxPerfect > 0 && len(out) >= rules.MaxPerfect {
				return out
			}
			out = append(out, Proposal{
				Type:          PerfectMatch,
				Jobs:          []Candidate{c},
				TotalEarnings: c.Job.TotalAmount,
				TotalHours:    c.Job.Hours(),
			})
		}
	}
	return out
}

func smartSchedules(rules AssemblyRules, slots []SlotCandidates, workerLocation *Point) []Proposal {
	if workerLocation == nil {
		return nil
	}
	loc := rules.Location
	if loc == nil {
		loc = time.UTC
	}

	byDate := map[string][]Candidate{}
	seen := map[string]map[string]int{}
	dates := make([]string, 0)
	for _, sc := range slots {
		for _, c := range sc.Candidates {
			key := c.Job.Start.In(loc).Format("2006-01-02")
			if _, ok := byDate[key]; !ok {
				dates = append(dates, key)
				seen[key] = map[string]int{}
			}
			id := c.Job.ID.String()
			if idx, dup := seen[key][id]; dup {
				if c.Combined > byDate[key][idx].Combined {
					byDate[key][idx] = c
				}
				continue
			}
			seen[key][id] = len(byDate[key])
			byDate[key] = append(byDate[key], c)
		}
	}
	sort.Strings(dates)

	out := make([]Proposal, 0)
	for _, d := range dates {
		day := byDate[d]
		if len(day) < 2 {
			continue
		}
		picked := walkDay(rules, day, *workerLocation)
		if len(picked) < 2 {
			continue
		}

		p := Proposal{Type: SmartSchedule, Jobs: picked, RouteOptimized: true}
		for _, c := range picked {
			p.TotalEarnings += c.Job.TotalAmount
			p.TotalHours += c.Job.Hours()
		}
		out = append(out, p)
	}
	return out
}

// walkDay greedily picks non-overlapping jobs in start order, refusing legs
// of MaxLegKm or more except for the first job of the day.
func walkDay(rules AssemblyRules, day []Candidate, start Point) []Candidate {
	sorted := make([]Candidate, len(day))
	copy(sorted, day)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Job.Start.Before(sorted[j].Job.Start)
	})

	picked := make([]Candidate, 0, len(sorted))
	var lastEnd time.Time
	current := start

	for _, c := range sorted {
		if c.Job.Start.Before(lastEnd) {
			continue
		}
		if c.Job.Site != nil && len(picked) > 0 && DistanceKm(current, *c.Job.Site) >= rules.MaxLegKm {
			continue
		}
		picked = append(picked, c)
		lastEnd = c.Job.End
		if c.Job.Site != nil {
			current = *c.Job.Site
		}
	}
	return picked
}
