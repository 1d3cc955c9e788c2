package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Assignment   AssignmentConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Assignment.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VUNALET_APP_ENV" required:"true"`
	Port         string `envconfig:"VUNALET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VUNALET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VUNALET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VUNALET_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VUNALET_DB_DSN"`
	Driver string `envconfig:"VUNALET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VUNALET_DB_HOST"`
	LegacyPort     int    `envconfig:"VUNALET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VUNALET_DB_USER"`
	LegacyPassword string `envconfig:"VUNALET_DB_PASSWORD"`
	LegacyName     string `envconfig:"VUNALET_DB_NAME"`
	LegacySSLMode  string `envconfig:"VUNALET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VUNALET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VUNALET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VUNALET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VUNALET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VUNALET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VUNALET_REDIS_ADDR"`
	Password     string        `envconfig:"VUNALET_REDIS_PASSWORD"`
	DB           int           `envconfig:"VUNALET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VUNALET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VUNALET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VUNALET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VUNALET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VUNALET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AssignmentConfig tunes the claim window, sweep cadence, and scorer weights.
type AssignmentConfig struct {
	ClaimWindow       time.Duration `envconfig:"VUNALET_ASSIGNMENT_CLAIM_WINDOW" default:"10m"`
	SweepInterval     time.Duration `envconfig:"VUNALET_ASSIGNMENT_SWEEP_INTERVAL" default:"2m"`
	PeakSweepInterval time.Duration `envconfig:"VUNALET_ASSIGNMENT_PEAK_SWEEP_INTERVAL" default:"30s"`
	PeakStartHour     int           `envconfig:"VUNALET_ASSIGNMENT_PEAK_START_HOUR" default:"0"`
	PeakEndHour       int           `envconfig:"VUNALET_ASSIGNMENT_PEAK_END_HOUR" default:"0"`
	SweepBatchSize    int           `envconfig:"VUNALET_ASSIGNMENT_SWEEP_BATCH_SIZE" default:"100"`

	// OpsUserID receives operations notifications from the sweep. Optional;
	// when unset those notifications are logged and skipped.
	OpsUserID string `envconfig:"VUNALET_ASSIGNMENT_OPS_USER_ID"`

	WorkloadWeight     float64 `envconfig:"VUNALET_ASSIGNMENT_WORKLOAD_WEIGHT" default:"0.4"`
	ProximityWeight    float64 `envconfig:"VUNALET_ASSIGNMENT_PROXIMITY_WEIGHT" default:"0.3"`
	PerformanceWeight  float64 `envconfig:"VUNALET_ASSIGNMENT_PERFORMANCE_WEIGHT" default:"0.2"`
	AvailabilityWeight float64 `envconfig:"VUNALET_ASSIGNMENT_AVAILABILITY_WEIGHT" default:"0.1"`
}

// PeakHoursEnabled reports whether a peak window is configured.
func (a AssignmentConfig) PeakHoursEnabled() bool {
	return a.PeakStartHour != a.PeakEndHour
}

// InPeakHours reports whether the given hour of day falls inside the peak
// window. Windows may wrap past midnight (e.g. 22 to 2).
func (a AssignmentConfig) InPeakHours(hour int) bool {
	if !a.PeakHoursEnabled() {
		return false
	}
	if a.PeakStartHour < a.PeakEndHour {
		return hour >= a.PeakStartHour && hour < a.PeakEndHour
	}
	return hour >= a.PeakStartHour || hour < a.PeakEndHour
}

func (a AssignmentConfig) validate() error {
	if a.ClaimWindow <= 0 {
		return fmt.Errorf("claim window must be positive")
	}
	if a.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	if a.PeakStartHour < 0 || a.PeakStartHour > 23 || a.PeakEndHour < 0 || a.PeakEndHour > 23 {
		return fmt.Errorf("peak hours must be within 0..23")
	}
	sum := a.WorkloadWeight + a.ProximityWeight + a.PerformanceWeight + a.AvailabilityWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("assignment weights must sum to 1.0, got %f", sum)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VUNALET_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
