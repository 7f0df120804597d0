package config

import (
	"strings"
	"time"

	"shiftmatch/internal/domain/matching"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AMQP     AMQPConfig
	Matching MatchingConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string

	// DemoMode lets unauthenticated calls act as the demo worker or business.
	DemoMode       bool
	DemoWorkerID   uuid.UUID
	DemoBusinessID uuid.UUID

	LogJSON  bool
	LogDebug bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	SlowQueryThreshold    time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type MatchingConfig struct {
	WeightSkill        float64
	WeightLocation     float64
	WeightRating       float64
	WeightAvailability float64

	MaxDistanceKm    float64
	TopN             int
	MinScore         float64
	ScoreParallelism int
	TimeZone         string

	RateLimitRPS   float64
	RateLimitBurst int
}

func (m MatchingConfig) Weights() matching.Weights {
	return matching.Weights{
		Skill:        m.WeightSkill,
		Location:     m.WeightLocation,
		Rating:       m.WeightRating,
		Availability: m.WeightAvailability,
	}
}

func (m MatchingConfig) Policy() matching.Policy {
	return matching.Policy{Weights: m.Weights(), MaxDistanceKm: m.MaxDistanceKm}
}

// Location resolves TimeZone, falling back to UTC.
func (m MatchingConfig) Location() *time.Location {
	if strings.TrimSpace(m.TimeZone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidValue       = errors.New("invalid configuration value")
)

const (
	DefaultDemoWorkerID   = "00000000-0000-0000-0000-00000000d001"
	DefaultDemoBusinessID = "00000000-0000-0000-0000-00000000b001"
)

// SetDefaults registers every optional key with its default.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_DEMO_MODE", false)
	v.SetDefault("APP_DEMO_WORKER_ID", DefaultDemoWorkerID)
	v.SetDefault("APP_DEMO_BUSINESS_ID", DefaultDemoBusinessID)
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_DEBUG", false)

	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", 5*time.Second)
	v.SetDefault("DB_SLOW_QUERY_THRESHOLD", 250*time.Millisecond)
	v.SetDefault("DB_POOL_MAX_CONNS", 10)
	v.SetDefault("DB_POOL_MIN_CONNS", 0)
	v.SetDefault("DB_POOL_MAX_CONN_LIFETIME", time.Hour)
	v.SetDefault("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute)
	v.SetDefault("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", 60*time.Second)

	v.SetDefault("AMQP_EXCHANGE", "matches")

	w := matching.DefaultWeights()
	v.SetDefault("MATCHING_WEIGHT_SKILL", w.Skill)
	v.SetDefault("MATCHING_WEIGHT_LOCATION", w.Location)
	v.SetDefault("MATCHING_WEIGHT_RATING", w.Rating)
	v.SetDefault("MATCHING_WEIGHT_AVAILABILITY", w.Availability)
	v.SetDefault("MATCHING_MAX_DISTANCE_KM", matching.DefaultMaxDistanceKm)
	v.SetDefault("MATCHING_TOP_N", 5)
	v.SetDefault("MATCHING_MIN_SCORE", 50)
	v.SetDefault("MATCHING_SCORE_PARALLELISM", 8)
	v.SetDefault("MATCHING_TIME_ZONE", "UTC")
	v.SetDefault("MATCHING_RATE_LIMIT_RPS", 2)
	v.SetDefault("MATCHING_RATE_LIMIT_BURST", 5)
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file. Environment variables win over the file.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	SetDefaults(v)

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
	}

	return LoadFrom(v)
}

func LoadFrom(v *viper.Viper) (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		DemoMode:    v.GetBool("APP_DEMO_MODE"),
		LogJSON:     v.GetBool("LOG_JSON"),
		LogDebug:    v.GetBool("LOG_DEBUG"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                req("DB_HOST"),
		DBPort:                req("DB_PORT"),
		DBName:                req("DB_NAME"),
		DBUser:                req("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		SlowQueryThreshold:    v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR"),
		Password: opt("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TTL:      v.GetDuration("REDIS_TTL"),
	}

	cfg.JWT = JWTConfig{AccessSecret: req("JWT_ACCESS_SECRET")}

	cfg.AMQP = AMQPConfig{
		URL:      opt("AMQP_URL"),
		Exchange: opt("AMQP_EXCHANGE"),
	}

	cfg.Matching = MatchingConfig{
		WeightSkill:        v.GetFloat64("MATCHING_WEIGHT_SKILL"),
		WeightLocation:     v.GetFloat64("MATCHING_WEIGHT_LOCATION"),
		WeightRating:       v.GetFloat64("MATCHING_WEIGHT_RATING"),
		WeightAvailability: v.GetFloat64("MATCHING_WEIGHT_AVAILABILITY"),
		MaxDistanceKm:      v.GetFloat64("MATCHING_MAX_DISTANCE_KM"),
		TopN:               v.GetInt("MATCHING_TOP_N"),
		MinScore:           v.GetFloat64("MATCHING_MIN_SCORE"),
		ScoreParallelism:   v.GetInt("MATCHING_SCORE_PARALLELISM"),
		TimeZone:           opt("MATCHING_TIME_ZONE"),
		RateLimitRPS:       v.GetFloat64("MATCHING_RATE_LIMIT_RPS"),
		RateLimitBurst:     v.GetInt("MATCHING_RATE_LIMIT_BURST"),
	}

	if len(missing) > 0 {
		return Config{}, errors.Wrapf(errMissingRequiredEnv, "%s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.App.DemoWorkerID, err = uuid.Parse(opt("APP_DEMO_WORKER_ID")); err != nil {
		return Config{}, errors.Wrap(errInvalidValue, "APP_DEMO_WORKER_ID")
	}
	if cfg.App.DemoBusinessID, err = uuid.Parse(opt("APP_DEMO_BUSINESS_ID")); err != nil {
		return Config{}, errors.Wrap(errInvalidValue, "APP_DEMO_BUSINESS_ID")
	}
	if err := cfg.Matching.Weights().Validate(); err != nil {
		return Config{}, errors.Wrap(err, "matching weights")
	}
	if _, err := time.LoadLocation(cfg.Matching.TimeZone); cfg.Matching.TimeZone != "" && err != nil {
		return Config{}, errors.Wrapf(errInvalidValue, "MATCHING_TIME_ZONE %q", cfg.Matching.TimeZone)
	}
	if cfg.Matching.TopN <= 0 {
		return Config{}, errors.Wrap(errInvalidValue, "MATCHING_TOP_N must be positive")
	}

	return cfg, nil
}
