package memory

import (
	"context"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
)

type AccountStore struct {
	mu       sync.RWMutex
	accounts map[domain.Username]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[domain.Username]domain.Account)}
}

func (s *AccountStore) Create(_ context.Context, acc domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acc.Username]; ok {
		return domain.ErrAccountExists
	}
	s.accounts[acc.Username] = acc
	return nil
}

func (s *AccountStore) Find(_ context.Context, username domain.Username) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[username]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return acc, nil
}
