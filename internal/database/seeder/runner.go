package seeder

import (
	"context"

	"shiftmatch/internal/database"
	"shiftmatch/internal/logger"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Log     *zap.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	log := logger.Component(r.Log, "seeder")
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return errors.Wrapf(err, "seed %s", s.Name())
		}
		log.Info("seed applied", zap.String("seeder", s.Name()))
	}
	return nil
}
