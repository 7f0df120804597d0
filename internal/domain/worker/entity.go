package worker

import (
	"time"

	"github.com/google/uuid"
)

type Worker struct {
	ID            uuid.UUID
	Name          string
	Skills        []string
	Latitude      *float64
	Longitude     *float64
	Rating        float64
	CompletedJobs int
	CreatedAt     time.Time
}

func (w Worker) Location() (lat, lng float64, ok bool) {
	if w.Latitude == nil || w.Longitude == nil {
		return 0, 0, false
	}
	return *w.Latitude, *w.Longitude, true
}
