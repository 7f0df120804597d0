package usecase

import (
	"bytes"
	"context"
	"sort"

	"shiftmatch/internal/domain/job"
	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/domain/worker"

	"golang.org/x/sync/errgroup"
)

type ScoredWorker struct {
	Worker worker.Worker
	Result matching.Result
}

// scoreWorkers scores every worker against j with at most limit scorers in
// flight, then orders by total descending and worker id ascending.
func scoreWorkers(ctx context.Context, s *matching.Scorer, workers []worker.Worker, j job.Job, limit int) ([]ScoredWorker, error) {
	out := make([]ScoredWorker, len(workers))
	mj := toMatchingJob(j)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, w := range workers {
		g.Go(func() error {
			res, err := s.Score(gctx, toMatchingWorker(w), mj)
			if err != nil {
				return err
			}
			out[i] = ScoredWorker{Worker: w, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Result.Total != out[b].Result.Total {
			return out[a].Result.Total > out[b].Result.Total
		}
		return bytes.Compare(out[a].Worker.ID[:], out[b].Worker.ID[:]) < 0
	})
	return out, nil
}
