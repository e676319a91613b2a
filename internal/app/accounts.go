package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Accounts registers users and checks their credentials. Account names
// are independent of the live-username set used by rooms.
type Accounts struct {
	store  core.AccountStore
	hasher *PasswordHasher
	now    func() time.Time
}

func NewAccounts(store core.AccountStore, hasher *PasswordHasher) *Accounts {
	return &Accounts{store: store, hasher: hasher, now: time.Now}
}

func (a *Accounts) Register(ctx context.Context, rawUser, password string) (domain.Account, error) {
	username, err := domain.NewUsername(rawUser)
	if err != nil {
		return domain.Account{}, err
	}
	if password == "" {
		return domain.Account{}, fmt.Errorf("%w: password required", domain.ErrValidation)
	}
	if len(password) > domain.MaxPasswordLen {
		return domain.Account{}, fmt.Errorf("%w: password too long", domain.ErrValidation)
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	acc := domain.Account{Username: username, PasswordHash: hash, CreatedAt: a.now().UTC()}
	if err := a.store.Create(ctx, acc); err != nil {
		return domain.Account{}, err
	}
	log.Info().Str("module", "app.accounts").Str("user", string(username)).Msg("account registered")
	return acc, nil
}

// Login fails with ErrInvalidCredentials for unknown users, accounts
// without a password and wrong passwords alike.
func (a *Accounts) Login(ctx context.Context, rawUser, password string) (domain.Account, error) {
	if rawUser == "" || password == "" {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	acc, err := a.store.Find(ctx, domain.Username(rawUser))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, domain.ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	if !acc.HasPassword() || !a.hasher.Verify(password, acc.PasswordHash) {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	return acc, nil
}
