// cuahang/routes/user.go
package routes

import (
	"encoding/json"
	"net/http"

	"cuahang/cuahang/config"
	"cuahang/cuahang/controllers"
	"cuahang/cuahang/middlewares"
	"cuahang/cuahang/utils/types"

	"github.com/go-chi/chi/v5"
)

func UserRoutes(ctrl *controllers.UserController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Get("/fetch/{user_id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := urlInt(r, "user_id")
			if err != nil {
				return fail(err)
			}
			user, err := ctrl.GetUser(r.Context(), id)
			if err != nil {
				return fail(err)
			}
			return user, http.StatusOK, nil
		}))

		gr.Get("/me", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := authUser(r)
			if err != nil {
				return fail(err)
			}
			user, err := ctrl.GetUser(r.Context(), id)
			if err != nil {
				return fail(err)
			}
			return user, http.StatusOK, nil
		}))
	})

	r.Post("/create", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		user, err := ctrl.CreateUser(r.Context(), req)
		if err != nil {
			return fail(err)
		}
		return user, http.StatusCreated, nil
	}))

	return r
}
