package handler

import (
	"context"

	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/repository"
)

// AccountStore is the slice of the account repository the credential
// flows need. Handlers accept the interface so the flows can be tested
// against an in-memory store without a database.
type AccountStore interface {
	Create(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	UpdateEmail(ctx context.Context, id uint64, email string) error
	UpdatePassword(ctx context.Context, email, password string, cost int) error
	Delete(ctx context.Context, id uint64) error
}

var _ AccountStore = (*repository.AccountRepo)(nil)
