package repository

import (
	"context"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"gorm.io/gorm"
)

// PlayerRepository 玩家仓储
type PlayerRepository interface {
	interfaces.Repository[model.Player]
	ListAll(ctx context.Context) ([]*model.Player, error)
}

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) FindByKey(ctx context.Context, c *model.Player) (*model.Player, error) {
	if c.Name == "" {
		return nil, nil
	}
	var p model.Player
	err := r.db.WithContext(ctx).Where("name = ?", c.Name).First(&p).Error
	return found(&p, err)
}

func (r *playerRepository) Save(ctx context.Context, p *model.Player) (*model.Player, error) {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *playerRepository) ListAll(ctx context.Context) ([]*model.Player, error) {
	var list []*model.Player
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
