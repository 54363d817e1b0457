package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // venue timezone must resolve on minimal images

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-reservation/internal/config"
	"github.com/iliyamo/theater-reservation/internal/database"
	"github.com/iliyamo/theater-reservation/internal/handler"
	"github.com/iliyamo/theater-reservation/internal/middleware"
	"github.com/iliyamo/theater-reservation/internal/queue"
	"github.com/iliyamo/theater-reservation/internal/repository"
	"github.com/iliyamo/theater-reservation/internal/router"
	"github.com/iliyamo/theater-reservation/internal/service"
)

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsProd() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()
	log := newLogger(cfg)

	rules, err := config.LoadBookingRules()
	if err != nil {
		log.WithError(err).Fatal("booking settings")
	}
	pricing, err := config.LoadPricing()
	if err != nil {
		log.WithError(err).Fatal("pricing settings")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("connect mysql")
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unreachable, rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, log); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}

	broker := config.LoadBrokerConfig()
	publisher := queue.NewPublisher(broker, log)
	defer publisher.Close()
	if broker.ConsumerEnabled {
		go func() {
			if err := queue.StartConsumer(ctx, broker, log); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("event consumer stopped")
			}
		}()
	}

	deps := service.NewDeps(db, config.NewStore(rules), config.NewStore(pricing), publisher, log)
	settings := service.NewSettingsService(deps)
	if err := settings.Bootstrap(ctx); err != nil {
		log.WithError(err).Fatal("load stored settings")
	}
	bookings := service.NewBookingService(deps)
	waitlist := service.NewWaitlistService(deps)
	vouchers := service.NewVoucherService(deps)
	promos := service.NewPromoService(deps)
	shows := service.NewShowService(deps)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			log.WithError(err).Fatal("bootstrap admin")
		}
		if created {
			log.WithField("email", cfg.AdminEmail).Info("bootstrap admin created")
		}
	}

	current := deps.Rules.Get()
	sweeper, err := service.NewSweeper(waitlist, tokens, current.WaitlistSweepInterval, current.Location(), log)
	if err != nil {
		log.WithError(err).Fatal("schedule sweeper")
	}
	settings.OnBookingRulesChange(sweeper.ApplyRules)
	sweeper.Start()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestLog(log))

	cacheCfg := config.LoadCacheConfig()
	public := router.PublicMiddleware{}
	if rdb != nil {
		public.Limit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		public.Cache = middleware.NewRedisCache(cacheCfg, rdb)
	}

	router.RegisterRoutes(e, db, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, &handler.PublicHandler{
		Bookings: bookings,
		Waitlist: waitlist,
		Vouchers: vouchers,
		Promos:   promos,
		Settings: settings,
	}, public)
	router.RegisterAdmin(e, router.AdminHandlers{
		Reservations: &handler.AdminReservationHandler{Bookings: bookings},
		Shows:        &handler.AdminShowHandler{Shows: shows},
		Waitlist:     &handler.AdminWaitlistHandler{Waitlist: waitlist},
		Vouchers:     &handler.AdminVoucherHandler{Vouchers: vouchers},
		Promos:       &handler.AdminPromoHandler{Promos: promos},
		Settings:     &handler.AdminSettingsHandler{Settings: settings, Redis: rdb, CachePrefix: cacheCfg.Prefix},
		Users:        &handler.AdminUserHandler{Users: users, BcryptCost: cfg.BcryptCost},
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := sweeper.Shutdown(); err != nil {
		log.WithError(err).Warn("sweeper shutdown")
	}
}
