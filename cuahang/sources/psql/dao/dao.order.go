package dao

import (
	"context"
	"strings"
	"time"

	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/types"

	"gorm.io/gorm"
)

// Only finished orders show up in a store's sales history.
var reportedStatuses = []string{models.OrderStatusCompleted, models.OrderStatusCancelled}

type OrderDAO struct {
	DB *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{DB: db}
}

func (dao *OrderDAO) CreateOrder(ctx context.Context, order *models.Order) error {
	return dao.DB.WithContext(ctx).Create(order).Error
}

func (dao *OrderDAO) CreateProduct(ctx context.Context, product *models.Product) error {
	return dao.DB.WithContext(ctx).Create(product).Error
}

// salesScope builds a fresh query over the line items of a store whose
// order is completed or cancelled, narrowed by the filter.
func (dao *OrderDAO) salesScope(ctx context.Context, storeID int, f types.SalesFilter) *gorm.DB {
	q := dao.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN users ON users.id = orders.user_id").
		Where("products.store_id = ?", storeID).
		Where("orders.status IN ?", reportedStatuses)

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := containsPattern(kw)
		q = q.Where(`(CAST(orders.id AS TEXT) LIKE ? ESCAPE '\' OR LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(COALESCE(users.full_name, '')) LIKE ? ESCAPE '\')`,
			like, like, like)
	}
	if name := strings.TrimSpace(f.ProductName); name != "" {
		q = q.Where(`LOWER(products.name) LIKE ? ESCAPE '\'`, containsPattern(name))
	}
	if f.StartDate != nil {
		q = q.Where("orders.created_at >= ?", startOfDay(*f.StartDate))
	}
	if f.EndDate != nil {
		q = q.Where("orders.created_at < ?", startOfDay(*f.EndDate).AddDate(0, 0, 1))
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern is a lower-cased substring LIKE pattern with the
// wildcards of s escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FindSalesHistory returns one page of line items, newest order first, and
// the total number of matching items. A size <= 0 returns every match.
func (dao *OrderDAO) FindSalesHistory(ctx context.Context, storeID int, f types.SalesFilter, page, size int) ([]models.OrderItem, int64, error) {
	var total int64
	if err := dao.salesScope(ctx, storeID, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := dao.salesScope(ctx, storeID, f).
		Select("order_items.*").
		Preload("Order.User").
		Preload("Product").
		Order("orders.id DESC").
		Order("order_items.id ASC")
	if size > 0 {
		q = q.Offset(page * size).Limit(size)
	}

	var items []models.OrderItem
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SalesStats aggregates the same window FindSalesHistory pages over.
// Revenue and units count completed orders only.
func (dao *OrderDAO) SalesStats(ctx context.Context, storeID int, f types.SalesFilter) (types.SalesStats, error) {
	var row struct {
		TotalRevenue         float64
		TotalCompletedOrders int64
		TotalCancelledOrders int64
		TotalProductsSold    int64
	}
	err := dao.salesScope(ctx, storeID, f).
		Select(`COALESCE(SUM(CASE WHEN orders.status = ? THEN order_items.line_total ELSE 0 END), 0) AS total_revenue,
			COUNT(DISTINCT CASE WHEN orders.status = ? THEN orders.id END) AS total_completed_orders,
			COUNT(DISTINCT CASE WHEN orders.status = ? THEN orders.id END) AS total_cancelled_orders,
			COALESCE(SUM(CASE WHEN orders.status = ? THEN order_items.quantity ELSE 0 END), 0) AS total_products_sold`,
			models.OrderStatusCompleted, models.OrderStatusCompleted, models.OrderStatusCancelled, models.OrderStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return types.SalesStats{}, err
	}
	return types.SalesStats{
		TotalRevenue:         row.TotalRevenue,
		TotalCompletedOrders: row.TotalCompletedOrders,
		TotalCancelledOrders: row.TotalCancelledOrders,
		TotalProductsSold:    row.TotalProductsSold,
	}.WithAverage(), nil
}

// FindCompletedItemsForStore loads, in one joined query plus declared
// preloads, the line items of the given orders that are completed and sell
// a product of the store. Orders of other stores or statuses drop out.
func (dao *OrderDAO) FindCompletedItemsForStore(ctx context.Context, storeID int, orderIDs []int) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var items []models.OrderItem
	err := dao.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.*").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id IN ?", orderIDs).
		Where("orders.status = ?", models.OrderStatusCompleted).
		Where("products.store_id = ?", storeID).
		Preload("Order.User").
		Preload("Order.Shipments").
		Preload("Order.Payments").
		Preload("Product").
		Order("orders.id DESC").
		Order("order_items.id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
