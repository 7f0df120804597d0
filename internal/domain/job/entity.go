package job

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusMatched    Status = "MATCHED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Fillable reports whether workers can still be proposed for the job.
func (s Status) Fillable() bool {
	return s == StatusOpen || s == StatusMatched
}

type Branch struct {
	ID           uuid.UUID
	BusinessID   uuid.UUID
	BusinessName string
	Name         string
	Address      string
	Latitude     *float64
	Longitude    *float64
	CreatedAt    time.Time
}

type Job struct {
	ID              uuid.UUID
	BusinessID      uuid.UUID
	BranchID        uuid.UUID
	Title           string
	Description     string
	SkillsRequired  []string
	StartTime       time.Time
	EndTime         time.Time
	HourlyRate      float64
	TotalAmount     float64
	MaxWorkers      int
	AcceptedWorkers int
	Status          Status
	CreatedAt       time.Time

	// Branch and BusinessName are filled by reads that join them.
	Branch       *Branch
	BusinessName string
}

func (j Job) Hours() float64 {
	return j.EndTime.Sub(j.StartTime).Hours()
}

// Site is the branch location, nil when the branch has no coordinates.
func (j Job) Site() (lat, lng float64, ok bool) {
	if j.Branch == nil || j.Branch.Latitude == nil || j.Branch.Longitude == nil {
		return 0, 0, false
	}
	return *j.Branch.Latitude, *j.Branch.Longitude, true
}
