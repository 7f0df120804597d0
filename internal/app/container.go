package app

import (
	"context"
	"time"

	"shiftmatch/internal/config"
	"shiftmatch/internal/database"
	dbpostgres "shiftmatch/internal/database/postgres"
	"shiftmatch/internal/domain/matching"
	"shiftmatch/internal/infrastructure/cache"
	"shiftmatch/internal/infrastructure/messaging"
	"shiftmatch/internal/pkg/jwt"
	"shiftmatch/internal/repository"
	"shiftmatch/internal/usecase"
	"shiftmatch/internal/ws"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Container struct {
	Config config.Config
	Log    *zap.Logger

	DB        database.DB
	Cache     *cache.Redis
	Publisher *messaging.Publisher
	Hub       *ws.Hub
	Tokens    jwt.Verifier

	Workers  repository.WorkerRepository
	Jobs     repository.JobRepository
	Branches repository.BranchRepository
	Matches  repository.MatchRepository

	Scorer *matching.Scorer

	AIMatching    usecase.AIMatchingUsecase
	Compatibility usecase.CompatibilityUsecase
	Dispatcher    usecase.DispatchUsecase
	JobUsecase    usecase.JobUsecase
	MatchUsecase  usecase.MatchUsecase
}

func NewContainer(cfg config.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}

	c := &Container{Config: cfg, Log: log, DB: db}
	if err := c.build(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) build() error {
	cfg := c.Config

	c.Workers = repository.NewPostgresWorkerRepository(c.DB)
	c.Jobs = repository.NewPostgresJobRepository(c.DB)
	c.Branches = repository.NewPostgresBranchRepository(c.DB)
	c.Matches = repository.NewPostgresMatchRepository(c.DB)

	scorer, err := matching.NewScorer(cfg.Matching.Policy(), c.Matches)
	if err != nil {
		return errors.Wrap(err, "build scorer")
	}
	c.Scorer = scorer

	c.Cache = cache.NewRedis(cfg.Redis, c.Log)
	c.Hub = ws.NewHub(c.Log)
	c.Tokens = jwt.NewHMACVerifier(cfg.JWT.AccessSecret)

	publishers := []usecase.MatchPublisher{ws.NewNotifier(c.Hub)}
	if cfg.AMQP.URL == "" {
		c.Log.Info("amqp url not configured, match events stay in-process")
	} else if p, err := messaging.Dial(cfg.AMQP, c.Log); err != nil {
		c.Log.Warn("rabbitmq unavailable, match events stay in-process", zap.Error(err))
	} else {
		c.Publisher = p
		publishers = append(publishers, p)
	}

	c.Dispatcher = usecase.NewDispatcher(usecase.DispatcherDeps{
		Jobs:    c.Jobs,
		Workers: c.Workers,
		Matches: c.Matches,
		Scorer:  scorer,
		Rules: usecase.DispatchRules{
			TopN:        cfg.Matching.TopN,
			MinScore:    cfg.Matching.MinScore,
			Parallelism: cfg.Matching.ScoreParallelism,
		},
		Locker:     c.Cache,
		Publishers: publishers,
		OpenJobs:   c.Cache,
		Log:        c.Log,
	})

	c.AIMatching = usecase.NewAIMatchingUsecase(c.Workers, c.Jobs, c.Cache, cfg.Matching.Location())
	c.Compatibility = usecase.NewCompatibilityUsecase(c.Workers, c.Jobs, scorer, cfg.Matching.ScoreParallelism)
	c.JobUsecase = usecase.NewJobUsecase(c.Jobs, c.Branches, c.Dispatcher, c.Cache, c.Log)
	c.MatchUsecase = usecase.NewMatchUsecase(c.Matches, c.Cache)
	return nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	c.Publisher.Close()
	var errs error
	if c.Cache != nil {
		errs = errors.CombineErrors(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = errors.CombineErrors(errs, c.DB.Close())
	}
	return errs
}
