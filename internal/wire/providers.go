package wire

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"legado/internal/audit"
	"legado/internal/checkin"
	"legado/internal/common"
	"legado/internal/config"
	"legado/internal/dbmongo"
	"legado/internal/dbmysql"
	"legado/internal/delivery"
	"legado/internal/media"
	"legado/internal/message"
	"legado/internal/profile"
)

// Application bundles everything the binaries need.
type Application struct {
	Config         *config.Config
	DB             *gorm.DB
	RateLimiter    *common.RateLimiter
	Audit          *audit.Logger
	Dispatcher     *delivery.Dispatcher
	CheckinService *checkin.Service
	Engine         *delivery.Engine
	MessageHandler *message.Handler
	ProfileHandler *profile.Handler
	CheckinHandler *checkin.Handler
	AuditHandler   *audit.Handler
	Media          *media.Server
}

// Shutdown stops the background workers, draining queued sends and
// audit writes.
func (a *Application) Shutdown() {
	if a.Dispatcher != nil {
		a.Dispatcher.Shutdown()
	}
	if a.Audit != nil {
		a.Audit.Shutdown()
	}
	if a.RateLimiter != nil {
		a.RateLimiter.Reset()
	}
}

func ProvideConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			ReadTimeout:  15,
			WriteTimeout: 15,
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
			BaseURL:      getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		},
		Database: config.DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "legado_user"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "legado_db"),
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Mongo: config.MongoConfig{
			URI:          getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			DatabaseName: getEnvOrDefault("MONGO_DB", "legado_media"),
			Enabled:      getEnvOrDefault("MONGO_ENABLED", "false") == "true",
		},
		Checkin: config.CheckinConfig{
			DefaultIntervalDays:  getEnvIntOrDefault("CHECKIN_INTERVAL_DAYS", 30),
			DefaultAttemptsLimit: getEnvIntOrDefault("CHECKIN_ATTEMPTS_LIMIT", 3),
		},
		Delivery: config.DeliveryConfig{
			Workers:           5,
			ChannelBufferSize: 1000,
			SweepInterval:     getEnvIntOrDefault("SWEEP_INTERVAL_MINUTES", 60),
			Enabled:           true,
		},
		Email: config.EmailConfig{
			SMTPHost:  getEnvOrDefault("SMTP_HOST", ""),
			SMTPPort:  587,
			Username:  getEnvOrDefault("SMTP_USERNAME", ""),
			Password:  getEnvOrDefault("SMTP_PASSWORD", ""),
			FromEmail: getEnvOrDefault("FROM_EMAIL", "no-reply@legado.app"),
			FromName:  getEnvOrDefault("FROM_NAME", "Legado"),
			Enabled:   getEnvOrDefault("EMAIL_ENABLED", "false") == "true",
		},
		Admin: config.AdminConfig{
			RateLimit:      60,
			RateWindowSecs: 60,
		},
	}
}

func ProvideRateLimiter(cfg *config.Config) *common.RateLimiter {
	return common.NewRateLimiter(cfg.Admin.RateLimit, time.Duration(cfg.Admin.RateWindowSecs)*time.Second)
}

func ProvideAuditLogger(repo *dbmysql.AuditRepository) *audit.Logger {
	return audit.NewLogger(repo)
}

func ProvideSender(cfg *config.Config) common.Sender {
	return delivery.NewSender(cfg)
}

func ProvideDispatcher(cfg *config.Config, sender common.Sender, logger *audit.Logger) *delivery.Dispatcher {
	return delivery.NewDispatcher(cfg.Delivery.Workers, cfg.Delivery.ChannelBufferSize, sender, logger)
}

func ProvideCheckinService(
	checkins *dbmysql.CheckinRepository,
	rules *dbmysql.DeliveryRuleRepository,
	profiles *dbmysql.ProfileRepository,
	dispatcher *delivery.Dispatcher,
	logger *audit.Logger,
	cfg *config.Config,
) *checkin.Service {
	return checkin.NewService(checkins, rules, profiles, dispatcher, logger, cfg)
}

func ProvideDeliveryEngine(
	messages *dbmysql.MessageRepository,
	rules *dbmysql.DeliveryRuleRepository,
	recipients *dbmysql.RecipientRepository,
	contacts *dbmysql.TrustedContactRepository,
	checkins *dbmysql.CheckinRepository,
	profiles *dbmysql.ProfileRepository,
	dispatcher *delivery.Dispatcher,
	logger *audit.Logger,
) *delivery.Engine {
	return delivery.NewEngine(messages, rules, recipients, contacts, checkins, profiles, dispatcher, logger)
}

func ProvideMessageService(
	messages *dbmysql.MessageRepository,
	rules *dbmysql.DeliveryRuleRepository,
	recipients *dbmysql.RecipientRepository,
	checkins *checkin.Service,
	logger *audit.Logger,
) *message.Service {
	return message.NewService(messages, rules, recipients, checkins, logger)
}

func ProvideProfileService(
	profiles *dbmysql.ProfileRepository,
	contacts *dbmysql.TrustedContactRepository,
	logger *audit.Logger,
) *profile.Service {
	return profile.NewService(profiles, contacts, logger)
}

func ProvideCheckinHandler(service *checkin.Service, logger *audit.Logger) *checkin.Handler {
	return checkin.NewHandler(service, logger)
}

func ProvideAuditHandler(repo *dbmysql.AuditRepository) *audit.Handler {
	return audit.NewHandler(repo)
}

// ProvideMediaServer returns nil when media storage is disabled; the
// router skips the media routes in that case.
func ProvideMediaServer(cfg *config.Config) *media.Server {
	if !cfg.Mongo.Enabled {
		return nil
	}

	client, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Printf("media storage unavailable: %v", err)
		return nil
	}
	return media.NewServer(client)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
