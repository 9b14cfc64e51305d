package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/auth"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache/sqlite"
	"github.com/alcyxob/FitnessClient-sub001/internal/config"
	"github.com/alcyxob/FitnessClient-sub001/internal/control"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
	"github.com/alcyxob/FitnessClient-sub001/internal/logger"
	"github.com/alcyxob/FitnessClient-sub001/internal/netmon"
	"github.com/alcyxob/FitnessClient-sub001/internal/repository"
	syncmgr "github.com/alcyxob/FitnessClient-sub001/internal/sync"
	"github.com/alcyxob/FitnessClient-sub001/internal/upload"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logging ---
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("starting fitness sync daemon", zap.String("api", cfg.API.BaseURL))

	// --- Local cache ---
	db, err := sqlite.Open(cfg.Cache.Path)
	if err != nil {
		zlog.Fatal("could not open cache database", zap.Error(err))
	}
	defer db.Close()

	userStore := sqlite.NewUserStore(db, zlog)
	exerciseStore := sqlite.NewExerciseStore(db, zlog)
	workoutStore := sqlite.NewWorkoutStore(db, zlog)
	assignmentStore := sqlite.NewAssignmentStore(db, zlog)

	// --- Session and API client ---
	session := auth.NewSession(zlog)
	apiClient := api.NewClient(cfg.API.BaseURL, session.Token,
		&http.Client{Timeout: cfg.API.Timeout}, zlog)

	// --- Network monitor ---
	monitor := netmon.NewMonitor(
		netmon.HTTPProbe(cfg.API.BaseURL, nil), cfg.Sync.ProbeInterval, zlog)

	// --- Sign in (headless) ---
	role := domain.RoleClient
	if cfg.API.Email != "" {
		signInCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		user, err := session.SignIn(signInCtx, apiClient.Login, cfg.API.Email, cfg.API.Password)
		cancel()
		if err != nil {
			// The daemon still serves cached data; sync stays degraded until
			// credentials work.
			zlog.Warn("initial sign-in failed, serving cache only", zap.Error(err))
		} else {
			role = user.Role
		}
	}

	// --- Repositories ---
	users := repository.NewUserRepository(apiClient, role, userStore, monitor, zlog)
	exercises := repository.NewExerciseRepository(apiClient, exerciseStore, monitor, zlog)
	workouts := repository.NewWorkoutRepository(apiClient, workoutStore, monitor, zlog)
	assignments := repository.NewAssignmentRepository(apiClient, assignmentStore, monitor, zlog)
	plans := repository.NewPlanRepository(apiClient, zlog)

	// --- Sync coordinator ---
	manager := syncmgr.NewManager(users, exercises, workouts, assignments, monitor, zlog)
	scheduler := syncmgr.NewScheduler(cfg.Sync.Schedule, manager, monitor, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor.Start(ctx)
	manager.Start(ctx)
	if err := scheduler.Start(); err != nil {
		zlog.Fatal("could not start sync scheduler", zap.Error(err))
	}

	// Kick an initial cycle if the backend is already reachable.
	if monitor.CheckNow(ctx) {
		go manager.TrySync(ctx)
	}

	// --- Control API ---
	uploader := upload.NewUploader(apiClient, assignmentStore, nil, zlog)
	handler := control.NewHandler(manager, monitor, uploader, plans, zlog)
	// No WriteTimeout: /sync/trigger runs the cycle inline and submit-video
	// streams a multi-minute transfer; either would outlive a fixed deadline.
	server := &http.Server{
		Addr:        cfg.Control.Address,
		Handler:     handler.Router(),
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		zlog.Info("control API listening", zap.String("address", cfg.Control.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("control API failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("control API forced to shut down", zap.Error(err))
	}
	scheduler.Stop()
	manager.Stop()
	monitor.Stop()
	zlog.Info("daemon exiting")
}
