package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"syllabus_calendar/internal/ai"
	"syllabus_calendar/internal/config"
	"syllabus_calendar/internal/handlers"
	"syllabus_calendar/internal/logger"
	"syllabus_calendar/internal/metrics"
	"syllabus_calendar/internal/storage"
	"syllabus_calendar/internal/usecases"
)

func main() {
	cfg := config.New()

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("unable to build logger: ", err)
	}
	defer logg.Sync() //nolint:errcheck
	for _, w := range cfg.Warnings {
		logg.Warn("config", zap.String("warning", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := time.LoadLocation(cfg.Google.TimeZone)
	if err != nil {
		logg.Fatal("unknown CALENDAR_TIMEZONE", zap.String("tz", cfg.Google.TimeZone), zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logg.Fatal("unable to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logg.Fatal("unable to ping db", zap.Error(err))
	}
	if err := storage.Migrate(ctx, pool); err != nil {
		logg.Fatal("unable to migrate db", zap.Error(err))
	}
	logg.Info("connected to db successfully")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var primary usecases.Strategy
	client, err := ai.NewClient(cfg.LLM)
	switch {
	case errors.Is(err, ai.ErrDisabled):
		logg.Warn("llm extraction disabled, using regex only", zap.Error(err))
	case err != nil:
		logg.Fatal("unable to build llm client", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	default:
		primary = usecases.NewLLMExtractor(ai.WithTimeout(client, cfg.LLM.Timeout), logg)
		logg.Info("llm extraction enabled", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))
	}
	pipeline := usecases.NewPipeline(primary, usecases.RegexExtractor{}, logg, metrics.NewExtraction(registry))

	eventStorage := storage.NewEventStorage(pool)
	syllabusStorage := storage.NewSyllabusStorage(pool)

	var calendarSync handlers.CalendarSync
	gcs, err := storage.NewGoogleCalendarStorage(ctx, cfg.Google, logg)
	if err != nil {
		logg.Warn("google calendar export disabled", zap.Error(err))
	} else {
		calendarSync = gcs
	}

	router := handlers.Router{
		Calendar: handlers.NewCalendarHandler(pipeline, eventStorage, location, logg),
		Syllabus: handlers.NewSyllabusHandler(pipeline, syllabusStorage, eventStorage, location, logg),
		Google:   handlers.NewGoogleCalendarHandler(calendarSync, eventStorage, logg),
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		HTTP:     metrics.NewHTTP(registry),
		Log:      logg,
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 30*time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logg.Warn("shutdown", zap.Error(err))
		}
	}()

	logg.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Fatal("fail listen and serve", zap.Error(err))
	}
}
