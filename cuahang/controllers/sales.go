// cuahang/controllers/sales.go
package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"cuahang/cuahang/services/reports"
	"cuahang/cuahang/sources/psql/dao"
	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/logging"
	"cuahang/cuahang/utils/types"

	"go.uber.org/zap"
)

// ErrNoStore means the vendor does not own any store yet.
var ErrNoStore = errors.New("vendor has no store")

type SalesController struct {
	orderDAO *dao.OrderDAO
	storeDAO *dao.StoreDAO
	userDAO  *dao.UserDAO
}

func NewSalesController(orderDAO *dao.OrderDAO, storeDAO *dao.StoreDAO, userDAO *dao.UserDAO) *SalesController {
	return &SalesController{orderDAO: orderDAO, storeDAO: storeDAO, userDAO: userDAO}
}

// SalesHistoryPage is the sales-history view model.
type SalesHistoryPage struct {
	User        *models.User       `json:"user"`
	Store       models.Store       `json:"store"`
	Items       []models.OrderItem `json:"items"`
	Page        int                `json:"page"`
	Size        int                `json:"size"`
	TotalItems  int64              `json:"totalItems"`
	TotalPages  int                `json:"totalPages"`
	Keyword     string             `json:"keyword,omitempty"`
	StartDate   string             `json:"startDate,omitempty"`
	EndDate     string             `json:"endDate,omitempty"`
	ProductName string             `json:"productName,omitempty"`
	SalesStats  types.SalesStats   `json:"salesStats"`
}

// ResolveStore picks the store a vendor is reporting on. storeID 0 selects
// the vendor's oldest store; a store owned by someone else is forbidden.
func (c *SalesController) ResolveStore(ctx context.Context, userID, storeID int) (*models.Store, error) {
	if storeID != 0 {
		store, err := c.storeDAO.GetStoreByID(ctx, storeID)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, ErrNoStore
		}
		if store.OwnerID != userID {
			return nil, apperr.Forbidden("store belongs to another vendor")
		}
		return store, nil
	}
	stores, err := c.storeDAO.GetStoresByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, ErrNoStore
	}
	return &stores[0], nil
}

func (c *SalesController) SalesHistory(ctx context.Context, userID, storeID int, f types.SalesFilter, page, size int) (*SalesHistoryPage, error) {
	defer logging.LogDuration(ctx, "SalesHistory")()

	user, err := c.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	store, err := c.ResolveStore(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}

	items, total, err := c.orderDAO.FindSalesHistory(ctx, store.ID, f, page, size)
	if err != nil {
		return nil, err
	}
	stats, err := c.orderDAO.SalesStats(ctx, store.ID, f)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &SalesHistoryPage{
		User:        user,
		Store:       *store,
		Items:       items,
		Page:        page,
		Size:        size,
		TotalItems:  total,
		TotalPages:  totalPages,
		Keyword:     f.Keyword,
		StartDate:   formatDate(f.StartDate),
		EndDate:     formatDate(f.EndDate),
		ProductName: f.ProductName,
		SalesStats:  stats,
	}, nil
}

// ExportSalesHistory renders every line item of the filter window.
func (c *SalesController) ExportSalesHistory(ctx context.Context, userID, storeID int, f types.SalesFilter, now time.Time) ([]byte, string, error) {
	defer logging.LogDuration(ctx, "ExportSalesHistory")()

	store, err := c.ResolveStore(ctx, userID, storeID)
	if err != nil {
		return nil, "", err
	}
	items, _, err := c.orderDAO.FindSalesHistory(ctx, store.ID, f, 0, 0)
	if err != nil {
		return nil, "", err
	}
	stats, err := c.orderDAO.SalesStats(ctx, store.ID, f)
	if err != nil {
		return nil, "", err
	}
	data, err := reports.ExportSalesHistory(items, *store, stats, now)
	if err != nil {
		return nil, "", err
	}
	logging.AppLogger.Info("sales history exported",
		zap.Int("store_id", store.ID), zap.Int("rows", len(items)))
	return data, reports.ExportFileName(store.Name, now), nil
}

// ExportSelectedSalesHistory exports the completed orders among orderIDs,
// keeping only line items of the vendor's store.
func (c *SalesController) ExportSelectedSalesHistory(ctx context.Context, userID, storeID int, orderIDs []int, now time.Time) ([]byte, string, error) {
	defer logging.LogDuration(ctx, "ExportSelectedSalesHistory")()

	store, err := c.ResolveStore(ctx, userID, storeID)
	if err != nil {
		return nil, "", err
	}
	items, err := c.orderDAO.FindCompletedItemsForStore(ctx, store.ID, orderIDs)
	if err != nil {
		return nil, "", err
	}
	data, err := reports.ExportSalesHistory(items, *store, reports.ComputeStats(items), now)
	if err != nil {
		return nil, "", err
	}
	logging.AppLogger.Info("selected sales exported",
		zap.Int("store_id", store.ID), zap.Int("orders", len(orderIDs)), zap.Int("rows", len(items)))
	return data, reports.SelectedExportFileName(now), nil
}

// ParseOrderIDs reads a comma-separated list such as "12, 15,20".
func ParseOrderIDs(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperr.InvalidArg("orderIds is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInvalidArgument, "invalid order id "+strconv.Quote(p), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseDate reads an optional yyyy-MM-dd date; empty input is nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(types.DateLayout, raw, time.Local)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, "invalid date "+strconv.Quote(raw), err)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(types.DateLayout)
}
