package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/pagebound/bookstore-server/internal/config"
	"github.com/pagebound/bookstore-server/internal/logger"
	"github.com/pagebound/bookstore-server/internal/service"
	"github.com/pagebound/bookstore-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := cfg.Data.DatabasePath()
	db, err := sqlite.Open(path, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Info("Database opened", "path", path)

	return &StoreHandle{Store: db}, nil
}

// Bootstrap records what happened during first-start initialization.
type Bootstrap struct {
	AdminCreated bool
	AdminEmail   string
}

// ProvideBootstrap ensures the configured default admin exists.
// An empty admin password skips the step.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	authService := do.MustInvoke[*service.AuthService](i)

	b := &Bootstrap{AdminEmail: cfg.Admin.Email}
	if cfg.Admin.Password == "" {
		log.Debug("Admin bootstrap disabled")
		return b, nil
	}

	user, created, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	b.AdminCreated = created

	log.Info("Admin account ready", "user_id", user.ID, "email", user.Email, "created", created)

	return b, nil
}
