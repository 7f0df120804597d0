package dto

import (
	"shiftmatch/internal/domain/match"

	"github.com/google/uuid"
)

type MatchResponse struct {
	ID         uuid.UUID `json:"id"`
	WorkerID   uuid.UUID `json:"workerId"`
	JobID      uuid.UUID `json:"jobId"`
	Status     string    `json:"status"`
	MatchScore int       `json:"matchScore"`
	MatchedAt  string    `json:"matchedAt"`
	AcceptedAt string    `json:"acceptedAt,omitempty"`
}

type DecideMatchRequest struct {
	Status string `json:"status"`
}

func NewMatchResponse(m match.Match) MatchResponse {
	out := MatchResponse{
		ID:         m.ID,
		WorkerID:   m.WorkerID,
		JobID:      m.JobID,
		Status:     string(m.Status),
		MatchScore: m.Score,
		MatchedAt:  formatTime(m.MatchedAt),
	}
	if m.AcceptedAt != nil {
		out.AcceptedAt = formatTime(*m.AcceptedAt)
	}
	return out
}

func NewMatchResponses(ms []match.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewMatchResponse(m))
	}
	return out
}
