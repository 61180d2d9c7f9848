package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/terraincognita07/cvagent/internal/db"
	"github.com/terraincognita07/cvagent/internal/services"
	"gorm.io/gorm"
)

const defaultRequestTimeout = 10 * time.Second

type HandlerConfig struct {
	SecretKey      []byte
	CookieSecure   bool
	SessionTTL     time.Duration
	PasscodeTTL    time.Duration
	RequestTimeout time.Duration
	// PasscodeStore overrides the database-backed challenge store.
	PasscodeStore services.PasscodeStore
	Notifier      services.PasscodeNotifier
	Logger        *slog.Logger
}

type Handler struct {
	db             *gorm.DB
	logger         *slog.Logger
	cookieSecure   bool
	requestTimeout time.Duration

	repositories       *db.Repositories
	passcodes          services.PasscodeStore
	sessions           *services.SessionIssuer
	authService        *services.AuthService
	applicationService *services.ApplicationService
	migrationService   *services.MigrationService

	loginLimiter    *attemptLimiter
	passcodeLimiter *attemptLimiter
}

func NewHandler(database *gorm.DB, config HandlerConfig) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if len(config.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	handler := &Handler{
		db:              database,
		logger:          logger,
		cookieSecure:    config.CookieSecure,
		requestTimeout:  timeout,
		sessions:        services.NewSessionIssuer(config.SecretKey, config.SessionTTL),
		loginLimiter:    newAttemptLimiter(defaultAttemptLimit, defaultAttemptWindow),
		passcodeLimiter: newAttemptLimiter(defaultAttemptLimit, defaultAttemptWindow),
	}
	return handler.withDependencies(database, config), nil
}

func (handler *Handler) withDependencies(database *gorm.DB, config HandlerConfig) *Handler {
	handler.repositories = db.NewRepositories(database)

	handler.passcodes = config.PasscodeStore
	if handler.passcodes == nil {
		handler.passcodes = handler.repositories.Passcodes
	}
	notifier := config.Notifier
	if notifier == nil {
		notifier = services.NewLogPasscodeNotifier(handler.logger)
	}

	handler.authService = services.NewAuthService(handler.repositories.Persons)
	handler.applicationService = services.NewApplicationService(handler.repositories.Applications)
	handler.migrationService = services.NewMigrationService(
		handler.repositories.Persons,
		handler.passcodes,
		notifier,
		config.PasscodeTTL,
	)
	return handler
}

// PasscodeStore is the store the migration flow writes to. The passcode
// janitor purges the same store.
func (handler *Handler) PasscodeStore() services.PasscodeStore {
	return handler.passcodes
}
