package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/wpadmin/internal/app"
	"github.com/odyssey-erp/wpadmin/internal/observability"
	"github.com/odyssey-erp/wpadmin/internal/platform/cache"
	"github.com/odyssey-erp/wpadmin/internal/taas"
	"github.com/odyssey-erp/wpadmin/internal/workperiods"
	"github.com/odyssey-erp/wpadmin/jobs"
)

// console holds the wired runtime of the admin console.
type console struct {
	router   http.Handler
	service  *workperiods.Service
	worker   *jobs.Worker
	stopSync func()
	closers  []func() error
}

func (c *console) Close(logger *slog.Logger) {
	c.stopSync()
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logger.Warn("close", slog.Any("error", err))
		}
	}
}

func buildConsole(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*console, error) {
	c := &console{}
	metrics := observability.NewMetrics()

	var redisClient *redis.Client
	client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, preferences and jobs disabled", slog.Any("error", err))
	} else {
		redisClient = client
		c.closers = append(c.closers, redisClient.Close)
	}

	prefs := workperiods.NewPreferences(redisClient)
	pageSize, err := prefs.PageSize(ctx)
	if err != nil {
		logger.Warn("load page size preference", slog.Any("error", err))
	}

	location := workperiods.NewLocation(cfg.InitialQuery)
	state := workperiods.DecodeQuery(location.Query(), workperiods.NewState(time.Now(), pageSize))
	store := workperiods.NewStore(state)

	api := taas.NewClient(cfg.TaaSAPIURL, cfg.TaaSAPIToken, cfg.TaaSAPITimeout)
	feed := workperiods.NewFeed(logger, cfg.FeedSize)
	c.service = workperiods.NewService(store, api, feed, workperiods.Options{
		SettleDelay: cfg.SettleDelay,
		Logger:      logger,
		Metrics:     metrics,
		Preferences: prefs,
	})

	querySync := workperiods.NewQuerySync(store, location, cfg.QuerySyncDelay)
	c.stopSync = querySync.Start()
	querySync.Schedule(true)

	jobHandler := jobs.NewHandler(nil, nil, logger)
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		jobClient := jobs.NewClient(redisOpts)
		inspector := asynq.NewInspector(redisOpts)
		c.closers = append(c.closers, jobClient.Close, inspector.Close)
		jobHandler = jobs.NewHandler(inspector, jobClient, logger)

		var cron []jobs.CronRegistration
		if cfg.RefreshCron != "" {
			task, err := jobs.NewPageRefreshTask("cron")
			if err != nil {
				return nil, err
			}
			cron = append(cron, jobs.CronRegistration{Spec: cfg.RefreshCron, Task: task})
		}
		c.worker, err = jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts: redisOpts,
			Logger:    logger,
			Handlers: []jobs.TaskHandler{{
				Type:    jobs.TaskPageRefresh,
				Handler: jobs.NewPageRefreshHandler(c.service, metrics, logger),
			}},
			Cron: cron,
		})
		if err != nil {
			return nil, err
		}
	}

	c.router = app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		WorkPeriodsHandler: workperiods.NewHandler(logger, c.service, feed, location),
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})
	return c, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	c, err := buildConsole(ctx, cfg, logger)
	if err != nil {
		logger.Error("build console", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close(logger)

	if c.worker != nil {
		go func() {
			if err := c.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("job worker", slog.Any("error", err))
			}
		}()
	}

	go c.service.LoadPage(ctx)

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      c.router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
