package sqlstore

import (
	"context"

	"github.com/dkeye/Chat/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteStore struct {
	db *gorm.DB
}

func NewFavoriteStore(db *gorm.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

func (s *FavoriteStore) Add(ctx context.Context, fav domain.Favorite) (bool, error) {
	row := favoriteRow{Username: string(fav.Username), Room: string(fav.Room)}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, persistence("add favorite", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *FavoriteStore) Remove(ctx context.Context, fav domain.Favorite) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("username = ? AND room = ?", string(fav.Username), string(fav.Room)).
		Delete(&favoriteRow{})
	if res.Error != nil {
		return false, persistence("remove favorite", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *FavoriteStore) List(ctx context.Context, username domain.Username) ([]domain.RoomName, error) {
	var rooms []string
	err := s.db.WithContext(ctx).Model(&favoriteRow{}).
		Where("username = ?", string(username)).
		Order("room ASC").
		Pluck("room", &rooms).Error
	if err != nil {
		return nil, persistence("list favorites", err)
	}
	out := make([]domain.RoomName, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, domain.RoomName(r))
	}
	return out, nil
}
