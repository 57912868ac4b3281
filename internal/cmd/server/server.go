// Package server parses server command flags and starts the game engine
// runtime with its periodic flush and sweep jobs.
package server

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
	"github.com/Arshia001/FLServer-sub001/internal/game/engine"
	"github.com/Arshia001/FLServer-sub001/internal/game/match"
	"github.com/Arshia001/FLServer-sub001/internal/game/rating"
	"github.com/Arshia001/FLServer-sub001/internal/game/storage/sqlite"
	entrypoint "github.com/Arshia001/FLServer-sub001/internal/platform/cmd"
)

// Config holds server command configuration.
type Config struct {
	StoragePath    string `env:"FLSERVER_STORAGE_PATH" envDefault:"flserver.db"`
	CategoriesPath string `env:"FLSERVER_CATEGORIES_PATH"`

	FlushInterval time.Duration `env:"FLSERVER_FLUSH_INTERVAL" envDefault:"30s"`
	SweepInterval time.Duration `env:"FLSERVER_SWEEP_INTERVAL" envDefault:"1m"`
	IdleTimeout   time.Duration `env:"FLSERVER_IDLE_TIMEOUT" envDefault:"10m"`

	RoundCount     int           `env:"FLSERVER_ROUND_COUNT" envDefault:"3"`
	TurnTime       time.Duration `env:"FLSERVER_TURN_TIME" envDefault:"60s"`
	ExpiryInterval time.Duration `env:"FLSERVER_EXPIRY_INTERVAL" envDefault:"24h"`

	RatingMinGain uint `env:"FLSERVER_RATING_MIN_GAIN" envDefault:"5"`
	RatingMaxGain uint `env:"FLSERVER_RATING_MAX_GAIN" envDefault:"25"`
	RatingWindow  uint `env:"FLSERVER_RATING_WINDOW" envDefault:"50"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.StoragePath, "storage", cfg.StoragePath, "Path to the sqlite entity state database")
	fs.StringVar(&cfg.CategoriesPath, "categories", cfg.CategoriesPath, "Path to a category words JSON file (built-in set when empty)")
	fs.DurationVar(&cfg.FlushInterval, "flush-interval", cfg.FlushInterval, "How often pending lazy writes are flushed")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "How often expired matches are swept")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "Idle time before an entity is deactivated")
	fs.IntVar(&cfg.RoundCount, "rounds", cfg.RoundCount, "Rounds per match")
	fs.DurationVar(&cfg.TurnTime, "turn-time", cfg.TurnTime, "Length of one timed turn")
	fs.DurationVar(&cfg.ExpiryInterval, "expiry-interval", cfg.ExpiryInterval, "Grace period before an unattended match counts as abandoned")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the engine runtime and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.StoragePath)
		if err != nil {
			return fmt.Errorf("open entity store: %w", err)
		}
		defer store.Close()

		categories, err := LoadCategories(cfg.CategoriesPath)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		eng, err := engine.New(engine.Config{
			Store:      store,
			Categories: categories,
			Scorer:     MembershipScorer(1),
			Rating: rating.Config{
				MinGain: cfg.RatingMinGain,
				MaxGain: cfg.RatingMaxGain,
				Window:  cfg.RatingWindow,
			},
			RoundCount:     cfg.RoundCount,
			TurnTime:       cfg.TurnTime,
			ExpiryInterval: cfg.ExpiryInterval,
		})
		if err != nil {
			return err
		}

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.FlushInterval),
			gocron.NewTask(func() {
				if err := eng.Flush(context.Background()); err != nil {
					log.Printf("flush pending writes: %v", err)
				}
			}),
		)
		if err != nil {
			return fmt.Errorf("schedule flush job: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.SweepInterval),
			gocron.NewTask(func() {
				if err := eng.Sweep(context.Background()); err != nil {
					log.Printf("sweep matches: %v", err)
				}
				eng.DeactivateIdle(cfg.IdleTimeout)
			}),
		)
		if err != nil {
			return fmt.Errorf("schedule sweep job: %w", err)
		}
		scheduler.Start()

		log.Printf("engine running: storage=%s rounds=%d categories=%d", cfg.StoragePath, cfg.RoundCount, len(categories.Names()))
		<-ctx.Done()

		if err := scheduler.Shutdown(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return eng.Shutdown(shutdownCtx)
	})
}

// MembershipScorer credits every accepted category word with a flat score.
// Words only reach the scorer after spelling correction, so membership is
// already established; the scorer exists as the seam where a richer
// per-word scoring policy plugs in.
func MembershipScorer(points uint8) match.Scorer {
	return match.ScorerFunc(func(ctx context.Context, cat category.Category, word string) (uint8, error) {
		if cat.Contains(word) {
			return points, nil
		}
		return 0, nil
	})
}
