package usecase

import (
	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/domain/worker"
)

func toMatchingWorker(w worker.Worker) matching.Worker {
	out := matching.Worker{
		ID:            w.ID,
		Skills:        w.Skills,
		Rating:        w.Rating,
		CompletedJobs: w.CompletedJobs,
	}
	if lat, lng, ok := w.Location(); ok {
		out.Location = &matching.Point{Lat: lat, Lng: lng}
	}
	return out
}

func toMatchingJob(j job.Job) matching.Job {
	out := matching.Job{
		ID:          j.ID,
		Skills:      j.SkillsRequired,
		Start:       j.StartTime,
		End:         j.EndTime,
		HourlyRate:  j.HourlyRate,
		TotalAmount: j.TotalAmount,
		MaxWorkers:  j.MaxWorkers,
		Accepted:    j.AcceptedWorkers,
	}
	if lat, lng, ok := j.Site(); ok {
		out.Site = &matching.Point{Lat: lat, Lng: lng}
	}
	return out
}
