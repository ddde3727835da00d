// cuahang/routes/sales.go
package routes

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cuahang/cuahang/config"
	"cuahang/cuahang/controllers"
	"cuahang/cuahang/middlewares"
	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/logging"
	"cuahang/cuahang/utils/types"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	DashboardPath   = "/vendor/dashboard"
	defaultPageSize = 10
	maxPageSize     = 100
	// maxPage keeps page*size well inside the int range of the OFFSET.
	maxPage = 1 << 20
)

// SalesRoutes is mounted under /vendor.
func SalesRoutes(ctrl *controllers.SalesController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))
	r.Use(middlewares.RequireRole(models.RoleVendor))

	r.Get("/sales-history", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middlewares.UserID(r)
		filter, err := parseSalesFilter(r)
		if err != nil {
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}
		storeID, page, size, err := parsePaging(r)
		if err != nil {
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}

		view, err := ctrl.SalesHistory(r.Context(), userID, storeID, filter, page, size)
		if errors.Is(err, controllers.ErrNoStore) {
			http.Redirect(w, r, DashboardPath, http.StatusFound)
			return
		}
		if err != nil {
			logging.ErrorLogger.Error("sales history failed", zap.Int("user_id", userID), zap.Error(err))
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, view)
	})

	r.Get("/sales-history/export", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middlewares.UserID(r)
		filter, err := parseSalesFilter(r)
		if err != nil {
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}
		storeID, err := optionalInt(r, "storeId", 0)
		if err != nil {
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}
		data, name, err := ctrl.ExportSalesHistory(r.Context(), userID, storeID, filter, time.Now())
		if err != nil {
			exportError(w, userID, err)
			return
		}
		writeAttachment(w, name, data)
	})

	r.Post("/sales-history/export-selected", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middlewares.UserID(r)
		orderIDs, err := controllers.ParseOrderIDs(r.FormValue("orderIds"))
		if err != nil {
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}
		storeID, err := optionalInt(r, "storeId", 0)
		if err != nil {
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}
		data, name, err := ctrl.ExportSelectedSalesHistory(r.Context(), userID, storeID, orderIDs, time.Now())
		if err != nil {
			exportError(w, userID, err)
			return
		}
		writeAttachment(w, name, data)
	})
	return r
}

func parseSalesFilter(r *http.Request) (types.SalesFilter, error) {
	start, err := controllers.ParseDate(r.FormValue("startDate"))
	if err != nil {
		return types.SalesFilter{}, err
	}
	end, err := controllers.ParseDate(r.FormValue("endDate"))
	if err != nil {
		return types.SalesFilter{}, err
	}
	return types.SalesFilter{
		Keyword:     strings.TrimSpace(r.FormValue("keyword")),
		ProductName: strings.TrimSpace(r.FormValue("productName")),
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// parsePaging clamps size into [1, maxPageSize] and page into [0, maxPage].
func parsePaging(r *http.Request) (storeID, page, size int, err error) {
	if storeID, err = optionalInt(r, "storeId", 0); err != nil {
		return
	}
	if page, err = optionalInt(r, "page", 0); err != nil {
		return
	}
	if size, err = optionalInt(r, "size", defaultPageSize); err != nil {
		return
	}
	page = min(max(page, 0), maxPage)
	size = min(max(size, 1), maxPageSize)
	return
}

func exportError(w http.ResponseWriter, userID int, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, controllers.ErrNoStore):
		status = http.StatusBadRequest
	case apperr.Is(err, apperr.CodeInvalidArgument), apperr.Is(err, apperr.CodePermissionDenied):
		status = apperr.HTTPStatus(err)
	}
	logging.ErrorLogger.Error("sales export failed", zap.Int("user_id", userID), zap.Int("status", status), zap.Error(err))
	http.Error(w, http.StatusText(status), status)
}

func writeAttachment(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
