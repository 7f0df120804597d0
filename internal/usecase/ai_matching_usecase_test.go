package usecase

import (
	"context"
	"testing"
	"time"

	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/domain/worker"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2030, 5, 31, 12, 0, 0, 0, time.UTC)

func ptr(f float64) *float64 { return &f }

func siteJob(title string, start, end time.Time, lat, lng float64, skills ...string) job.Job {
	return job.Job{
		ID:             uuid.New(),
		Title:          title,
		SkillsRequired: skills,
		StartTime:      start,
		EndTime:        end,
		HourlyRate:     10,
		TotalAmount:    10 * end.Sub(start).Hours(),
		MaxWorkers:     1,
		Status:         job.StatusOpen,
		Branch:         &job.Branch{Name: title + " branch", Latitude: ptr(lat), Longitude: ptr(lng)},
	}
}

func newAIMatching(ws *fakeWorkers, js *fakeJobs, cache OpenJobCache) *AIMatching {
	u := NewAIMatchingUsecase(ws, js, cache, time.UTC)
	u.now = func() time.Time { return fixedNow }
	return u
}

func TestAIMatching_SmartScheduleAcrossTwoBranches(t *testing.T) {
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	a := siteJob("A", day.Add(9*time.Hour), day.Add(13*time.Hour), 10.7769, 106.7009, "barista", "cook")
	b := siteJob("B", day.Add(14*time.Hour), day.Add(18*time.Hour), 10.9118, 106.7009, "barista", "cook")
	w := worker.Worker{ID: uuid.New(), Skills: []string{"Barista"}, Latitude: ptr(10.7770), Longitude: ptr(106.7010)}

	u := newAIMatching(newFakeWorkers(w), newFakeJobs(a, b), nil)
	out, err := u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "08:00", EndTime: "20:00"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	p := out[0]
	assert.Equal(t, matching.SmartSchedule, p.Type)
	assert.True(t, p.RouteOptimized)
	assert.InDelta(t, 8.0, p.TotalHours, 1e-9)
	assert.InDelta(t, 80.0, p.TotalEarnings, 1e-9)
	require.Len(t, p.Jobs, 2)
	assert.Equal(t, "A", p.Jobs[0].Job.Title)
	assert.Equal(t, "B", p.Jobs[1].Job.Title)
	assert.Equal(t, "A branch", p.Jobs[0].Job.Branch.Name)
	// overlap 100, skill 50
	assert.InDelta(t, 80.0, p.Jobs[0].Score, 1e-9)
}

func TestAIMatching_PerfectMatchesComeFirst(t *testing.T) {
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	a := siteJob("A", day.Add(9*time.Hour), day.Add(13*time.Hour), 10.7769, 106.7009, "barista")
	b := siteJob("B", day.Add(14*time.Hour), day.Add(18*time.Hour), 10.7769, 106.7009, "barista")
	w := worker.Worker{ID: uuid.New(), Skills: []string{"barista"}}

	u := newAIMatching(newFakeWorkers(w), newFakeJobs(a, b), nil)
	out, err := u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "08:00", EndTime: "20:00"}},
		Location: &matching.Point{Lat: 10.7769, Lng: 106.7009},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, matching.PerfectMatch, out[0].Type)
	assert.Equal(t, matching.PerfectMatch, out[1].Type)
	assert.Equal(t, matching.SmartSchedule, out[2].Type, "request location stands in for the worker's")
}

func TestAIMatching_NoLocationNoSmartSchedule(t *testing.T) {
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	a := siteJob("A", day.Add(9*time.Hour), day.Add(13*time.Hour), 10.7769, 106.7009, "barista", "cook")
	b := siteJob("B", day.Add(14*time.Hour), day.Add(18*time.Hour), 10.9118, 106.7009, "barista", "cook")
	w := worker.Worker{ID: uuid.New(), Skills: []string{"barista"}}

	u := newAIMatching(newFakeWorkers(w), newFakeJobs(a, b), nil)
	out, err := u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "08:00", EndTime: "20:00"}},
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAIMatching_InvalidInput(t *testing.T) {
	w := worker.Worker{ID: uuid.New()}
	u := newAIMatching(newFakeWorkers(w), newFakeJobs(), nil)

	_, err := u.Propose(context.Background(), AIMatchingInput{WorkerID: w.ID})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "17:00", EndTime: "09:00"}},
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, matching.ErrInvalidSlot))

	_, err = u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "tomorrow", StartTime: "09:00", EndTime: "10:00"}},
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "09:00", EndTime: "10:00"}},
		Location: &matching.Point{Lat: 91},
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = u.Propose(context.Background(), AIMatchingInput{Slots: []SlotInput{{}}})
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestAIMatching_WorkerNotFound(t *testing.T) {
	u := newAIMatching(newFakeWorkers(), newFakeJobs(), nil)

	_, err := u.Propose(context.Background(), AIMatchingInput{
		WorkerID: uuid.New(),
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "09:00", EndTime: "10:00"}},
	})
	assert.True(t, errors.Is(err, ErrWorkerNotFound))
}

func TestAIMatching_UsesCachedPool(t *testing.T) {
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	fresh := siteJob("fresh", day.Add(9*time.Hour), day.Add(13*time.Hour), 0, 0)
	ended := siteJob("ended", fixedNow.Add(-3*time.Hour), fixedNow.Add(-time.Hour), 0, 0)
	w := worker.Worker{ID: uuid.New()}
	jobs := newFakeJobs()
	cache := &memoryJobCache{jobs: []job.Job{fresh, ended}, hit: true}

	u := newAIMatching(newFakeWorkers(w), jobs, cache)
	out, err := u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots: []SlotInput{
			{Date: "2030-06-01", StartTime: "09:00", EndTime: "13:00"},
			{Date: "2030-05-31", StartTime: "09:00", EndTime: "11:00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, jobs.listCalls)
	require.Len(t, out, 1)
	assert.Equal(t, "fresh", out[0].Jobs[0].Job.Title)
}

func TestAIMatching_FillsCacheOnMiss(t *testing.T) {
	w := worker.Worker{ID: uuid.New()}
	jobs := newFakeJobs()
	cache := &memoryJobCache{}

	u := newAIMatching(newFakeWorkers(w), jobs, cache)
	_, err := u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "09:00", EndTime: "13:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, jobs.listCalls)
	assert.Equal(t, 1, cache.sets)
}

func TestAIMatching_PoolFailureIsInternal(t *testing.T) {
	w := worker.Worker{ID: uuid.New()}
	jobs := newFakeJobs()
	jobs.err = errors.New("timeout")

	u := newAIMatching(newFakeWorkers(w), jobs, nil)
	_, err := u.Propose(context.Background(), AIMatchingInput{
		WorkerID: w.ID,
		Slots:    []SlotInput{{Date: "2030-06-01", StartTime: "09:00", EndTime: "13:00"}},
	})
	assert.True(t, errors.Is(err, ErrInternal))
}
