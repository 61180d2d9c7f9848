package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/terraincognita07/cvagent/internal/api"
	"github.com/terraincognita07/cvagent/internal/cli"
	"github.com/terraincognita07/cvagent/internal/db"
	"github.com/terraincognita07/cvagent/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env failed", "error", err)
	}
	time.Local = mustLoadLocation(getEnv("TZ", "UTC"))

	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1], os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func runCommand(name string, args []string) error {
	switch name {
	case "serve":
		return runServer()
	case "create-recruiter":
		flags := flag.NewFlagSet(name, flag.ContinueOnError)
		options := databaseFlags(flags)
		details := cli.RecruiterDetails{}
		flags.StringVar(&details.Username, "username", "", "recruiter username")
		flags.StringVar(&details.Name, "name", "", "first name")
		flags.StringVar(&details.Surname, "surname", "", "surname")
		flags.StringVar(&details.Email, "email", "", "email address")
		flags.StringVar(&details.PersonalNumber, "pnr", "", "personal number (12 digits)")
		if err := flags.Parse(args); err != nil {
			return err
		}
		return cli.RunCreateRecruiterCommand(*options, details)
	case "reset-password":
		flags := flag.NewFlagSet(name, flag.ContinueOnError)
		options := databaseFlags(flags)
		username := flags.String("username", "", "username of the account to reset")
		if err := flags.Parse(args); err != nil {
			return err
		}
		return cli.RunResetPasswordCommand(*options, *username)
	default:
		return fmt.Errorf("unknown command %q (expected serve, create-recruiter or reset-password)", name)
	}
}

func databaseFlags(flags *flag.FlagSet) *db.OpenOptions {
	options := databaseOptionsFromEnv()
	options.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	flags.StringVar(&options.SQLitePath, "db", options.SQLitePath, "sqlite database path")
	return &options
}

func runServer() error {
	config, err := loadServerConfig()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel}))
	slog.SetDefault(log)

	config.Database.Logger = log
	database, err := db.Open(config.Database)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	handlerConfig := api.HandlerConfig{
		SecretKey:      []byte(config.SecretKey),
		CookieSecure:   config.CookieSecure,
		SessionTTL:     config.SessionTTL,
		PasscodeTTL:    config.PasscodeTTL,
		RequestTimeout: config.RequestTimeout,
		Notifier:       services.NewLogPasscodeNotifier(log),
		Logger:         log,
	}
	if config.RedisURL != "" {
		redisClient, err := db.OpenRedis(lifecycleCtx, config.RedisURL)
		if err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		defer redisClient.Close()
		handlerConfig.PasscodeStore = db.NewRedisPasscodeStore(redisClient, "")
	}

	handler, err := api.NewHandler(database, handlerConfig)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	janitor := services.NewPasscodeJanitor(handler.PasscodeStore(), log, services.DefaultPasscodeJanitorSchedule)
	if err := janitor.Start(lifecycleCtx); err != nil {
		return err
	}
	defer func() {
		<-janitor.Stop().Done()
	}()

	app := newServerApp(handler, config)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("cvagent listening",
		"port", config.Port,
		"db_driver", config.Database.Driver,
		"redis", config.RedisURL != "",
		"tz", time.Local.String(),
	)
	return app.Listen(":" + config.Port)
}

func newServerApp(handler *api.Handler, config serverConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "CV Agent",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestIDConfig()))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New())
	if len(config.CORSOrigins) > 0 {
		app.Use(cors.New(corsConfig(config.CORSOrigins)))
	}

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func requestIDConfig() requestid.Config {
	return requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: "requestid",
	}
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: true,
	}
}
