package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/vacation-rental/internal/applog"
	"github.com/iliyamo/vacation-rental/internal/config"
	"github.com/iliyamo/vacation-rental/internal/database"
	"github.com/iliyamo/vacation-rental/internal/handler"
	"github.com/iliyamo/vacation-rental/internal/ics"
	"github.com/iliyamo/vacation-rental/internal/mail"
	"github.com/iliyamo/vacation-rental/internal/middleware"
	"github.com/iliyamo/vacation-rental/internal/queue"
	"github.com/iliyamo/vacation-rental/internal/repository"
	"github.com/iliyamo/vacation-rental/internal/router"
	"github.com/iliyamo/vacation-rental/internal/scheduler"
	"github.com/iliyamo/vacation-rental/internal/service"
)

func main() {
	cfg := config.Load()
	applog.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		applog.Logger().Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			applog.Logger().Fatalf("migrate: %v", err)
		}
	}
	rdb := config.NewRedisClient()

	// ---- Repositories ----
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	accRepo := repository.NewAccommodationRepo(db)
	resRepo := repository.NewReservationRepo(db)

	// ---- Services ----
	accommodations := service.NewAccommodationService(accRepo, repository.NewAccommodationArchiveRepo(db)).WithOwners(users)
	occupancy := service.NewOccupancyService(accRepo)
	calendars := service.NewCalendarService(accRepo, ics.NewFetcher(cfg.ICS.FetchTimeout), cfg.ICS.SyncConcurrency)
	reservations := service.NewReservationService(resRepo, repository.NewReservationArchiveRepo(db), accRepo)
	reviews := service.NewReviewService(repository.NewReviewRepo(db), accRepo)
	blogRepo := repository.NewBlogRepo(db)
	blogs := service.NewBlogService(blogRepo)
	comments := service.NewCommentService(repository.NewBlogCommentRepo(db), blogRepo)
	logins := service.NewLoginHistoryService(repository.NewLoginHistoryRepo(db))

	// ---- Notifications ----
	mailer := mail.NewNotifier(mail.NewSMTPSender(cfg.Mail))
	var notifier service.Notifier = mailer
	if cfg.Broker.NotifyViaQueue {
		notifier = queue.NewPublisher(cfg.Broker.URL)
		consumer := queue.NewConsumer(cfg.Broker.URL, cfg.Broker.Prefetch, mailer)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				applog.Error("notification consumer stopped", err)
			}
		}()
	}

	// ---- Scheduler ----
	sched := scheduler.New(cfg.Scheduler, rdb)
	if cfg.Scheduler.Enabled {
		reconciler := service.NewReconciler(accommodations, reservations, users, notifier)
		requester := service.NewReviewRequester(resRepo, notifier, cfg.ClientSiteURL)
		jobs := []scheduler.Job{
			{Name: "cleanup", Spec: cfg.Scheduler.CleanupCron, Run: func(ctx context.Context) error {
				_, err := reconciler.Sweep(ctx)
				return err
			}},
			{Name: "ical-sync", Spec: cfg.Scheduler.ICalSync, Run: func(ctx context.Context) error {
				_, err := calendars.SyncAll(ctx)
				return err
			}},
			{Name: "review-requests", Spec: cfg.Scheduler.ReviewCron, Run: func(ctx context.Context) error {
				_, err := requester.Run(ctx)
				return err
			}},
		}
		for _, j := range jobs {
			if err := sched.Add(j); err != nil {
				applog.Logger().Fatalf("scheduler: %v", err)
			}
		}
		sched.Start()
	}

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Logger = applog.Logger()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLog())

	guards := router.NewGuards(cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, logins), guards)
	router.RegisterAccommodations(e,
		handler.NewAccommodationHandler(accommodations),
		handler.NewOccupancyHandler(occupancy, accommodations),
		handler.NewCalendarHandler(calendars),
		guards)
	router.RegisterReservations(e, handler.NewReservationHandler(reservations), guards)
	router.RegisterContent(e,
		handler.NewReviewHandler(reviews),
		handler.NewBlogHandler(blogs, comments),
		handler.NewLoginHistoryHandler(logins),
		guards)

	addr := ":" + cfg.Port
	go func() {
		applog.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Logger().Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	applog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		applog.Error("http shutdown", err)
	}
	sched.Stop(shutdownCtx)
	if rdb != nil {
		_ = rdb.Close()
	}
}
