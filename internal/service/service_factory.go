package service

import (
	"fmt"

	"securebank/internal/audit"
	"securebank/internal/clock"
	"securebank/internal/config"
	"securebank/internal/hashing"
	"securebank/internal/models"
	"securebank/internal/repository"

	"go.uber.org/zap"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	cfg         *config.Config
	clock       clock.Clock
	store       repository.Store
	securityLog *audit.SecurityLog
	alerts      *AlertCenter
	users       *UserDirectory
	logger      *zap.Logger

	engine *Engine
	ledger *LedgerService
}

// NewServiceFactory seeds the user directory from configuration.
func NewServiceFactory(
	cfg *config.Config,
	clk clock.Clock,
	hasher *hashing.Hasher,
	store repository.Store,
	securityLog *audit.SecurityLog,
	logger *zap.Logger,
) (*ServiceFactory, error) {
	users := NewUserDirectory(hasher)

	demo := models.User{
		UserID:      cfg.Demo.UserID,
		Username:    cfg.Demo.Username,
		DisplayName: cfg.Demo.DisplayName,
		Email:       cfg.Demo.Email,
		Role:        models.Role(cfg.Demo.Role),
	}
	if err := users.Add(demo, cfg.Demo.Password); err != nil {
		return nil, fmt.Errorf("seed demo user: %w", err)
	}

	if cfg.Demo.AdminUsername != "" {
		admin := models.User{
			UserID:      "ADMIN001",
			Username:    cfg.Demo.AdminUsername,
			DisplayName: cfg.Demo.AdminDisplayName,
			Email:       cfg.Demo.AdminEmail,
			Role:        models.RoleAdmin,
		}
		if err := users.Add(admin, cfg.Demo.AdminPassword); err != nil {
			return nil, fmt.Errorf("seed admin user: %w", err)
		}
	}

	return &ServiceFactory{
		cfg:         cfg,
		clock:       clk,
		store:       store,
		securityLog: securityLog,
		alerts:      NewAlertCenter(clk),
		users:       users,
		logger:      logger,
	}, nil
}

// Engine returns the session engine instance (singleton)
func (f *ServiceFactory) Engine() *Engine {
	if f.engine == nil {
		f.engine = NewEngine(
			EngineConfigFrom(f.cfg),
			f.clock,
			f.users,
			NewStaticCodeVerifier(f.cfg.Demo.MFACode),
			f.securityLog,
			f.alerts,
			f.logger.Named("engine"),
		)
	}
	return f.engine
}

// Ledger returns the ledger service instance (singleton)
func (f *ServiceFactory) Ledger() *LedgerService {
	if f.ledger == nil {
		f.ledger = NewLedgerService(
			f.store,
			f.Engine(),
			f.clock,
			f.securityLog,
			f.alerts,
			f.logger.Named("ledger"),
		)
	}
	return f.ledger
}

func (f *ServiceFactory) Alerts() *AlertCenter {
	return f.alerts
}

func (f *ServiceFactory) SecurityLog() *audit.SecurityLog {
	return f.securityLog
}

// Cleanup cleans up all services
func (f *ServiceFactory) Cleanup() {
	if f.engine != nil {
		f.engine.Close()
	}
}
