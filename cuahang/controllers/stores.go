// cuahang/controllers/stores.go
package controllers

import (
	"context"
	"strings"

	"cuahang/cuahang/sources/psql/dao"
	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/types"
)

type StoresController struct {
	dao *dao.StoreDAO
}

func NewStoresController(dao *dao.StoreDAO) *StoresController {
	return &StoresController{dao: dao}
}

func (c *StoresController) CreateStore(ctx context.Context, ownerID int, req types.CreateStoreRequest) (*models.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.InvalidArg("store name is required")
	}
	store := &models.Store{OwnerID: ownerID, Name: name, ImageURL: req.ImageURL}
	if err := c.dao.CreateStore(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (c *StoresController) MyStores(ctx context.Context, ownerID int) ([]models.Store, error) {
	return c.dao.GetStoresByOwner(ctx, ownerID)
}
