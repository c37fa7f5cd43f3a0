package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/accountsvc/domain"
	"github.com/you/accountsvc/internal/config"
	"github.com/you/accountsvc/internal/infrastructure/auth"
	"github.com/you/accountsvc/internal/infrastructure/database"
	"github.com/you/accountsvc/internal/infrastructure/notifications"
	"github.com/you/accountsvc/internal/infrastructure/repositories"
	"github.com/you/accountsvc/internal/infrastructure/storage"
	"github.com/you/accountsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Repositories
	UserRepo    domain.UserRepository
	OTPRepo     domain.OTPRepository
	SessionRepo domain.SessionRepository

	// Services
	PasswordSvc domain.PasswordService
	Mailer      domain.Mailer
	AvatarStore domain.AvatarStore
	OTPSvc      domain.OTPService
	AuthSvc     domain.AuthService
	UserSvc     domain.UserService
	Janitor     *services.Janitor
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	if err := container.initRedis(); err != nil {
		return nil, err
	}

	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() error {
	// Redis is optional; without it sessions live in the primary store.
	if c.Config.RedisAddr == "" {
		return nil
	}
	client := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if err := client.Ping(context.Background()); err != nil {
		return err
	}
	c.RedisClient = client.Client
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OTPRepo = repositories.NewOTPRepository(c.DB)
	if c.RedisClient != nil {
		c.SessionRepo = repositories.NewRedisSessionRepository(c.RedisClient, c.Config.SessionTTL)
	} else {
		c.SessionRepo = repositories.NewSessionRepository(c.DB, c.Config.SessionTTL)
	}
}

func (c *Container) initServices() {
	c.PasswordSvc = auth.NewPasswordService()
	c.Mailer = notifications.NewEmailService(
		c.Config.SMTPHost,
		c.Config.SMTPPort,
		c.Config.SMTPUsername,
		c.Config.SMTPPassword,
		c.Config.SMTPFrom,
	)
	c.AvatarStore = storage.NewLocalAvatarStore(c.Config.UploadsDir, c.Config.UploadsBaseURL)

	c.OTPSvc = services.NewOTPService(c.OTPRepo, c.Mailer, c.Config.OTPTTL)
	c.AuthSvc = services.NewAuthService(c.UserRepo, c.SessionRepo, c.PasswordSvc, c.OTPSvc)
	c.UserSvc = services.NewUserService(c.UserRepo, services.NewValidator(c.UserRepo))
	c.Janitor = services.NewJanitor(c.OTPRepo, c.SessionRepo, c.Config.CleanupInterval)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
