package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"educraft-session-service/internal/app"
	"educraft-session-service/internal/config"
	"educraft-session-service/internal/domain"
	"educraft-session-service/internal/infra/llm"
	"educraft-session-service/internal/infra/memory"
	pgstore "educraft-session-service/internal/infra/postgres"
	redisstore "educraft-session-service/internal/infra/redis"
	"educraft-session-service/internal/logging"
	transport "educraft-session-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Log.Level)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.SyllabusLoader = memory.NewStaticSyllabusLoader(sampleSyllabi())
	if pool != nil {
		loader = pgstore.NewSyllabusLoader(pool)
	}

	syllabusTTL := config.TTLDuration(cfg.Syllabus.TTL, 10*time.Minute)
	var syllabi transport.SyllabusReader
	if redisClient != nil {
		syllabi = redisstore.NewSyllabusRepository(redisClient, loader, syllabusTTL)
	} else {
		syllabi = memory.NewSyllabusRepository(loader, syllabusTTL)
	}

	var rooms app.RoomRepository
	var dedup app.DedupCache
	if redisClient != nil {
		rooms = redisstore.NewRoomStore(redisClient, redisTTL)
		dedup = redisstore.NewDedupCache(redisClient, config.TTLDuration(cfg.Dedup.TTL, 0))
	} else {
		rooms = memory.NewRoomStore()
		dedup = memory.NewDedupCache()
	}

	var completions app.CompletionStore = memory.NewCompletionStore()
	if pool != nil {
		completions = pgstore.NewCompletionStore(pool)
	}

	generator := llm.NewClient(llm.Config{
		URL:         cfg.Generator.URL,
		APIKey:      cfg.Generator.APIKey,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
	})
	if cfg.Generator.APIKey == "" {
		logger.Warn("generator api key not set, serving fallback content only")
	}
	generatorTimeout := config.TTLDuration(cfg.Generator.Timeout, 20*time.Second)

	roomService := app.NewRoomService(rooms, logger)
	arbiter := app.NewArbiter(generator, dedup,
		app.WithGeneratorTimeout(generatorTimeout),
		app.WithArbiterLogger(logger),
	)
	api := transport.NewAPIHandler(
		arbiter,
		app.NewContentService(generator, generatorTimeout, logger),
		app.NewProgressService(completions, syllabi, logger),
		roomService,
		syllabi,
		logger,
	)
	wsHandler := transport.NewWSHandler(roomService, logger)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(api, wsHandler, cfg.Server.AllowedOrigins),
		ReadTimeout: 15 * time.Second,
		// Generation can retry several times; leave room beyond the per-call timeout.
		WriteTimeout: 2*generatorTimeout + 15*time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting session service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		reapIdleRooms(gctx, roomService,
			config.TTLDuration(cfg.Rooms.ReapInterval, time.Minute),
			config.TTLDuration(cfg.Rooms.IdleTTL, 30*time.Minute))
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// reapIdleRooms drops rooms that have been empty and unwatched for idleTTL.
func reapIdleRooms(ctx context.Context, rooms *app.RoomService, interval, idleTTL time.Duration) {
	if interval <= 0 || idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rooms.ReapIdle(now.Add(-idleTTL))
		}
	}
}

// sampleSyllabi seeds the demo loader; Postgres replaces it when configured.
func sampleSyllabi() map[string]domain.Syllabus {
	return map[string]domain.Syllabus{
		"demo-math-5": {
			ID:      "demo-math-5",
			UserID:  domain.DefaultUserID,
			Subject: "Math",
			Grade:   "5",
			Chapters: []domain.Chapter{
				{ID: 1, Title: "Place Value", Content: "Reading and writing whole numbers up to one million, rounding to the nearest thousand."},
				{ID: 2, Title: "Fractions", Content: "Equivalent fractions, comparing fractions and adding fractions with like denominators."},
				{ID: 3, Title: "Decimals", Content: "Tenths and hundredths, converting between fractions and decimals."},
			},
		},
	}
}
