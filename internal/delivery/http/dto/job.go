package dto

import (
	"math"
	"time"

	"shiftmatch/internal/domain/job"

	"github.com/google/uuid"
)

type BranchResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

type BusinessResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type JobResponse struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	HourlyRate      float64          `json:"hourlyRate"`
	TotalAmount     float64          `json:"totalAmount"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	Status          string           `json:"status"`
	MaxWorkers      int              `json:"maxWorkers"`
	AcceptedWorkers int              `json:"acceptedWorkers"`
	Branch          *BranchResponse  `json:"branch,omitempty"`
	Business        BusinessResponse `json:"business"`
	SkillsRequired  []string         `json:"skillsRequired"`
	MatchScore      *int             `json:"matchScore,omitempty"`
}

type CreateJobRequest struct {
	BranchID       uuid.UUID `json:"branchId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	SkillsRequired []string  `json:"skillsRequired"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	HourlyRate     float64   `json:"hourlyRate"`
	MaxWorkers     int       `json:"maxWorkers"`
}

type CreateJobResponse struct {
	Job            JobResponse `json:"job"`
	MatchesCreated int         `json:"matchesCreated"`
}

func NewJobResponse(j job.Job) JobResponse {
	out := JobResponse{
		ID:              j.ID,
		Title:           j.Title,
		Description:     j.Description,
		HourlyRate:      j.HourlyRate,
		TotalAmount:     j.TotalAmount,
		StartTime:       formatTime(j.StartTime),
		EndTime:         formatTime(j.EndTime),
		Status:          string(j.Status),
		MaxWorkers:      j.MaxWorkers,
		AcceptedWorkers: j.AcceptedWorkers,
		Business:        BusinessResponse{ID: j.BusinessID, Name: j.BusinessName},
		SkillsRequired:  j.SkillsRequired,
	}
	if out.SkillsRequired == nil {
		out.SkillsRequired = []string{}
	}
	if b := j.Branch; b != nil {
		out.Branch = &BranchResponse{
			ID:        b.ID,
			Name:      b.Name,
			Address:   b.Address,
			Latitude:  b.Latitude,
			Longitude: b.Longitude,
		}
	}
	return out
}

func NewJobResponses(jobs []job.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobResponse(j))
	}
	return out
}

// Score rounds a 0-100 score for the wire.
func Score(v float64) int {
	return int(math.Round(v))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
