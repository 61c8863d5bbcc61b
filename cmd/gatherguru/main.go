package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gatherguru/internal/config"
	"gatherguru/internal/logger"
	"gatherguru/internal/mongo"
	"gatherguru/internal/mysql"
	"gatherguru/internal/routing"
	"gatherguru/pkg/booking"
	"gatherguru/pkg/event"
	"gatherguru/pkg/mq"
	"gatherguru/pkg/payment"
	"gatherguru/pkg/scheduler"
	"gatherguru/pkg/session"
	"gatherguru/pkg/user"
)

type publisher interface {
	booking.Publisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.Load(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := mysql.LoadDB(ctx, cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	mongoClient, mongoDB, err := mongo.LoadDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect from mongo", "error", err)
		}
	}()

	var pub publisher = mq.LogPublisher{Logger: log}
	if cfg.AMQPURL != "" {
		p, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		pub = p
		log.Info("publishing booking events", "exchange", cfg.AMQPExchange)
	}
	defer pub.Close()

	sessions := session.NewMySQLSessionRepo(db)
	users := user.NewService(user.NewMySQLRepo(db), sessions)
	eventRepo := event.NewMongoRepo(mongoDB)
	events := event.NewService(eventRepo)
	bookings := booking.NewService(booking.NewMongoRepo(mongoDB), eventRepo, pub, log)

	if cfg.AdminEmail != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("admin account created", "email", cfg.AdminEmail)
		}
	}

	deps := routing.Deps{
		Secret:    []byte(cfg.JWTSecret),
		Users:     users,
		Sessions:  sessions,
		Events:    events,
		Bookings:  bookings,
		StaticDir: cfg.StaticDir,
		Logger:    log,
	}
	if cfg.PaymentsEnabled() {
		gw := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		deps.Payments = payment.NewService(gw, bookings, pub, cfg.Currency, log)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payment routes disabled")
	}

	go scheduler.New(bookings, sessions, cfg.BookingTTL, cfg.SchedulerInterval, log).Start(ctx)

	return routing.StartServer(ctx, cfg.HTTPAddr, routing.NewRouter(deps), log)
}
