package match

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted:
		return st, true
	}
	return "", false
}

// CanTransition lists the moves a match may make. COMPLETED is reached
// from ACCEPTED only through check-out, which lives outside this service.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusRejected || to == StatusCancelled
	case StatusAccepted:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

type Match struct {
	ID         uuid.UUID
	WorkerID   uuid.UUID
	JobID      uuid.UUID
	Status     Status
	Score      int
	MatchedAt  time.Time
	AcceptedAt *time.Time
}

// ProposedEvent announces a freshly created PENDING match to the worker.
type ProposedEvent struct {
	MatchID    uuid.UUID `json:"matchId"`
	WorkerID   uuid.UUID `json:"workerId"`
	JobID      uuid.UUID `json:"jobId"`
	JobTitle   string    `json:"jobTitle"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	HourlyRate float64   `json:"hourlyRate"`
	Score      int       `json:"score"`
	ProposedAt time.Time `json:"proposedAt"`
}

const EventMatchProposed = "match.proposed"
