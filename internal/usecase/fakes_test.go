package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/domain/match"
	"shiftmatch/internal/domain/worker"
	"shiftmatch/internal/repository"

	"github.com/google/uuid"
)

type fakeWorkers struct {
	items     map[uuid.UUID]worker.Worker
	err       error
	lastQuery []string
}

func newFakeWorkers(ws ...worker.Worker) *fakeWorkers {
	f := &fakeWorkers{items: map[uuid.UUID]worker.Worker{}}
	for _, w := range ws {
		f.items[w.ID] = w
	}
	return f
}

func (f *fakeWorkers) FindByID(_ context.Context, id uuid.UUID) (worker.Worker, error) {
	if f.err != nil {
		return worker.Worker{}, f.err
	}
	w, ok := f.items[id]
	if !ok {
		return worker.Worker{}, repository.ErrNotFound
	}
	return w, nil
}

func (f *fakeWorkers) ListBySkills(_ context.Context, skills []string) ([]worker.Worker, error) {
	f.lastQuery = skills
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, s := range skills {
		want[strings.ToLower(s)] = true
	}
	out := make([]worker.Worker, 0)
	for _, w := range f.items {
		if len(want) == 0 {
			out = append(out, w)
			continue
		}
		for _, s := range w.Skills {
			if want[strings.ToLower(s)] {
				out = append(out, w)
				break
			}
		}
	}
	// map order is random; the real query orders by id
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

type fakeJobs struct {
	mu        sync.Mutex
	items     map[uuid.UUID]job.Job
	err       error
	listCalls int
	created   []job.Job
}

func newFakeJobs(js ...job.Job) *fakeJobs {
	f := &fakeJobs{items: map[uuid.UUID]job.Job{}}
	for _, j := range js {
		f.items[j.ID] = j
	}
	return f
}

func (f *fakeJobs) FindByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return job.Job{}, f.err
	}
	j, ok := f.items[id]
	if !ok {
		return job.Job{}, repository.ErrNotFound
	}
	return j, nil
}

func (f *fakeJobs) ListOpen(_ context.Context, now time.Time) ([]job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]job.Job, 0)
	for _, j := range f.items {
		if j.Status.Fillable() && j.AcceptedWorkers < j.MaxWorkers && j.EndTime.After(now) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].StartTime.Before(out[b].StartTime) })
	return out, nil
}

func (f *fakeJobs) ListUrgent(_ context.Context, now time.Time, within time.Duration) ([]job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]job.Job, 0)
	for _, j := range f.items {
		if j.Status.Fillable() && !j.StartTime.Before(now) && !j.StartTime.After(now.Add(within)) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJobs) Create(_ context.Context, j job.Job) (job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return job.Job{}, f.err
	}
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	j.CreatedAt = time.Now()
	f.items[j.ID] = j
	f.created = append(f.created, j)
	return j, nil
}

func (f *fakeJobs) setStatus(id uuid.UUID, st job.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.items[id]
	j.Status = st
	f.items[id] = j
}

type fakeBranches struct {
	items map[uuid.UUID]job.Branch
}

func (f fakeBranches) FindByID(_ context.Context, id uuid.UUID) (job.Branch, error) {
	b, ok := f.items[id]
	if !ok {
		return job.Branch{}, repository.ErrNotFound
	}
	return b, nil
}

// fakeMatches mimics the unique (worker, job) constraint and the job status
// side effects of the Postgres repository.
type fakeMatches struct {
	mu        sync.Mutex
	jobs      *fakeJobs
	items     map[uuid.UUID]match.Match
	conflicts map[uuid.UUID]bool
	createErr error
	decideErr error
}

func newFakeMatches(jobs *fakeJobs) *fakeMatches {
	return &fakeMatches{jobs: jobs, items: map[uuid.UUID]match.Match{}, conflicts: map[uuid.UUID]bool{}}
}

func (f *fakeMatches) FindByID(_ context.Context, id uuid.UUID) (match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return match.Match{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMatches) List(_ context.Context, fl repository.MatchFilter) ([]match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]match.Match, 0)
	for _, m := range f.items {
		if fl.WorkerID != nil && m.WorkerID != *fl.WorkerID {
			continue
		}
		if fl.JobID != nil && m.JobID != *fl.JobID {
			continue
		}
		if fl.Status != nil && m.Status != *fl.Status {
			continue
		}
		if fl.BusinessID != nil {
			j, err := f.jobs.FindByID(context.Background(), m.JobID)
			if err != nil || j.BusinessID != *fl.BusinessID {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMatches) HasAcceptedConflict(_ context.Context, workerID uuid.UUID, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conflicts[workerID], nil
}

func (f *fakeMatches) CreatePending(ctx context.Context, jobID uuid.UUID, pending []repository.PendingMatch, now time.Time) ([]match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	j, err := f.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.Status != job.StatusOpen {
		return []match.Match{}, nil
	}

	created := make([]match.Match, 0, len(pending))
	for _, p := range pending {
		dup := false
		for _, m := range f.items {
			if m.WorkerID == p.WorkerID && m.JobID == jobID {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		m := match.Match{ID: uuid.New(), WorkerID: p.WorkerID, JobID: jobID, Status: match.StatusPending, Score: p.Score, MatchedAt: now}
		f.items[m.ID] = m
		created = append(created, m)
	}
	if len(created) > 0 {
		f.jobs.setStatus(jobID, job.StatusMatched)
	}
	return created, nil
}

func (f *fakeMatches) Decide(_ context.Context, id uuid.UUID, from, to match.Status, now time.Time) (match.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decideErr != nil {
		return match.Match{}, f.decideErr
	}
	m, ok := f.items[id]
	if !ok || m.Status != from {
		return match.Match{}, repository.ErrConflict
	}
	m.Status = to
	if to == match.StatusAccepted {
		m.AcceptedAt = &now
		f.jobs.setStatus(m.JobID, job.StatusInProgress)
	}
	f.items[id] = m
	return m, nil
}

func (f *fakeMatches) put(m match.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[m.ID] = m
}

type fakeLocker struct {
	held     map[string]string
	err      error
	unlocked []string
	stale    int
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key, token string) error {
	if l.held[key] != token {
		l.stale++
		return nil
	}
	delete(l.held, key)
	l.unlocked = append(l.unlocked, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []match.ProposedEvent
	err    error
}

func (p *recordingPublisher) PublishMatchProposed(_ context.Context, ev match.ProposedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type memoryJobCache struct {
	jobs        []job.Job
	hit         bool
	sets        int
	invalidated int
}

func (c *memoryJobCache) GetOpenJobs(context.Context) ([]job.Job, bool) {
	return c.jobs, c.hit
}

func (c *memoryJobCache) SetOpenJobs(_ context.Context, jobs []job.Job) {
	c.jobs = jobs
	c.sets++
}

func (c *memoryJobCache) InvalidateOpenJobs(context.Context) {
	c.invalidated++
	c.hit = false
}
