// cuahang/routes/auth.go
package routes

import (
	"encoding/json"
	"net/http"

	"cuahang/cuahang/controllers"
	"cuahang/cuahang/utils/types"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		token, err := ctrl.Login(r.Context(), req.Username)
		if err != nil {
			return fail(err)
		}
		return map[string]string{"token": token}, http.StatusOK, nil
	}))
	return r
}
