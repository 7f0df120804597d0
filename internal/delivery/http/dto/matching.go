package dto

import (
	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/usecase"

	"github.com/google/uuid"
)

type TimeSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type AIMatchingRequest struct {
	TimeSlots []TimeSlotRequest `json:"timeSlots"`
	Location  *LocationRequest  `json:"location,omitempty"`
}

type ProposalResponse struct {
	Type           string        `json:"type"`
	Jobs           []JobResponse `json:"jobs"`
	TotalEarnings  float64       `json:"totalEarnings"`
	TotalHours     float64       `json:"totalHours"`
	RouteOptimized bool          `json:"routeOptimized"`
}

type AIMatchingResponse struct {
	Matches []ProposalResponse `json:"matches"`
}

func (r AIMatchingRequest) Input(workerID uuid.UUID) usecase.AIMatchingInput {
	in := usecase.AIMatchingInput{WorkerID: workerID, Slots: make([]usecase.SlotInput, 0, len(r.TimeSlots))}
	for _, s := range r.TimeSlots {
		in.Slots = append(in.Slots, usecase.SlotInput{Date: s.Date, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	if r.Location != nil {
		in.Location = &matching.Point{Lat: r.Location.Lat, Lng: r.Location.Lng}
	}
	return in
}

func NewAIMatchingResponse(ps []usecase.Proposal) AIMatchingResponse {
	out := AIMatchingResponse{Matches: make([]ProposalResponse, 0, len(ps))}
	for _, p := range ps {
		pr := ProposalResponse{
			Type:           string(p.Type),
			Jobs:           make([]JobResponse, 0, len(p.Jobs)),
			TotalEarnings:  p.TotalEarnings,
			TotalHours:     p.TotalHours,
			RouteOptimized: p.RouteOptimized,
		}
		for _, pj := range p.Jobs {
			jr := NewJobResponse(pj.Job)
			score := Score(pj.Score)
			jr.MatchScore = &score
			pr.Jobs = append(pr.Jobs, jr)
		}
		out.Matches = append(out.Matches, pr)
	}
	return out
}

type BreakdownResponse struct {
	Skill        int `json:"skill"`
	Location     int `json:"location"`
	Rating       int `json:"rating"`
	Availability int `json:"availability"`
}

type CandidateResponse struct {
	WorkerID      uuid.UUID         `json:"workerId"`
	Name          string            `json:"name"`
	Skills        []string          `json:"skills"`
	Rating        float64           `json:"rating"`
	CompletedJobs int               `json:"completedJobs"`
	Score         int               `json:"score"`
	Breakdown     BreakdownResponse `json:"breakdown"`
}

func NewBreakdown(b matching.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		Skill:        Score(b.Skill),
		Location:     Score(b.Location),
		Rating:       Score(b.Rating),
		Availability: Score(b.Availability),
	}
}

func NewCandidateResponses(ws []usecase.ScoredWorker) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(ws))
	for _, sw := range ws {
		skills := sw.Worker.Skills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, CandidateResponse{
			WorkerID:      sw.Worker.ID,
			Name:          sw.Worker.Name,
			Skills:        skills,
			Rating:        sw.Worker.Rating,
			CompletedJobs: sw.Worker.CompletedJobs,
			Score:         Score(sw.Result.Total),
			Breakdown:     NewBreakdown(sw.Result.Breakdown),
		})
	}
	return out
}

type CompatibilityResponse struct {
	WorkerID  uuid.UUID         `json:"workerId"`
	JobID     uuid.UUID         `json:"jobId"`
	Score     int               `json:"score"`
	Breakdown BreakdownResponse `json:"breakdown"`
}
