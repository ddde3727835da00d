package dao

import (
	"context"
	"errors"

	"cuahang/cuahang/sources/psql/models"

	"gorm.io/gorm"
)

type StoreDAO struct {
	DB *gorm.DB
}

func NewStoreDAO(db *gorm.DB) *StoreDAO {
	return &StoreDAO{DB: db}
}

func (dao *StoreDAO) CreateStore(ctx context.Context, store *models.Store) error {
	return dao.DB.WithContext(ctx).Create(store).Error
}

// GetStoreByID returns nil, nil when the store does not exist.
func (dao *StoreDAO) GetStoreByID(ctx context.Context, id int) (*models.Store, error) {
	var store models.Store
	err := dao.DB.WithContext(ctx).First(&store, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// GetStoresByOwner lists the stores of a vendor, oldest first.
func (dao *StoreDAO) GetStoresByOwner(ctx context.Context, ownerID int) ([]models.Store, error) {
	var stores []models.Store
	err := dao.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (dao *StoreDAO) GetAllStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := dao.DB.WithContext(ctx).Order("name ASC").Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}
