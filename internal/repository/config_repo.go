package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigRepository reads and writes plugin settings in the platform
// configuration store.
type ConfigRepository interface {
	Get(ctx context.Context, plugin, name string) (string, error)
	Set(ctx context.Context, plugin, name, value string) error
}

type GormConfigRepo struct {
	db *gorm.DB
}

func NewGormConfigRepo(db *gorm.DB) *GormConfigRepo {
	return &GormConfigRepo{db: db}
}

func (r *GormConfigRepo) Get(ctx context.Context, plugin, name string) (string, error) {
	var model ConfigPluginModel
	err := r.db.WithContext(ctx).
		Where("plugin = ? AND name = ?", plugin, name).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if model.Value == nil {
		return "", nil
	}
	return *model.Value, nil
}

func (r *GormConfigRepo) Set(ctx context.Context, plugin, name, value string) error {
	model := ConfigPluginModel{Plugin: plugin, Name: name, Value: &value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plugin"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&model).Error
}
