package service

import (
	"context"
	"log"

	"github.com/iliyamo/reading-practice/internal/config"
	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/repository"
)

// EnsureSuperadmin creates the first superadmin account from the
// configured credentials when none exists yet. Repeated startups are
// no-ops. The configured credentials themselves are enforced earlier, at
// config load time.
func EnsureSuperadmin(ctx context.Context, cfg config.Config, accounts *repository.AccountRepo) error {
	exists, err := accounts.HasSuperadmin(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	id, err := accounts.Create(ctx, cfg.SuperadminEmail, cfg.SuperadminPassword, model.RoleSuperadmin, cfg.BcryptCost)
	if err != nil {
		return err
	}
	log.Printf("bootstrap: created superadmin account id=%d email=%s", id, cfg.SuperadminEmail)
	return nil
}
