package sqlstore

import (
	"context"
	"errors"

	"github.com/dkeye/Chat/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create inserts the account; an existing username yields ErrAccountExists.
func (s *AccountStore) Create(ctx context.Context, acc domain.Account) error {
	row := accountRow{
		Username:     string(acc.Username),
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return persistence("create account", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountExists
	}
	return nil
}

func (s *AccountStore) Find(ctx context.Context, username domain.Username) (domain.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).First(&row, "username = ?", string(username)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, persistence("find account", err)
	}
	return domain.Account{
		Username:     domain.Username(row.Username),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}
