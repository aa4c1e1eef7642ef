package repository

import (
	"context"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ApplicationRepository 开发者应用仓库接口
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id int64) (*model.Application, error)
	GetByClientID(ctx context.Context, clientID string) (*model.Application, error)
	List(ctx context.Context) ([]model.Application, error)
	Update(ctx context.Context, app *model.Application) error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository 创建应用仓库
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) GetByClientID(ctx context.Context, clientID string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) List(ctx context.Context) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).Where("status = ?", 1).Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) Update(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Save(app).Error
}
