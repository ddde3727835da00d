// cuahang/routes/stores.go
package routes

import (
	"encoding/json"
	"net/http"

	"cuahang/cuahang/config"
	"cuahang/cuahang/controllers"
	"cuahang/cuahang/middlewares"
	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/types"

	"github.com/go-chi/chi/v5"
)

func StoreRoutes(ctrl *controllers.StoresController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))
	r.Use(middlewares.RequireRole(models.RoleVendor))

	r.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		userID, err := authUser(r)
		if err != nil {
			return fail(err)
		}
		var req types.CreateStoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		store, err := ctrl.CreateStore(r.Context(), userID, req)
		if err != nil {
			return fail(err)
		}
		return store, http.StatusCreated, nil
	}))

	r.Get("/mine", handleJSON(func(r *http.Request) (any, int, error) {
		userID, err := authUser(r)
		if err != nil {
			return fail(err)
		}
		stores, err := ctrl.MyStores(r.Context(), userID)
		if err != nil {
			return fail(err)
		}
		return stores, http.StatusOK, nil
	}))
	return r
}
