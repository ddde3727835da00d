// cuahang/routes/json.go
package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cuahang/cuahang/middlewares"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/logging"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// generic wrapper to reduce boilerplate
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			if status >= http.StatusInternalServerError {
				logging.ErrorLogger.Error("request failed",
					zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
			}
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, status, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// fail maps err to its HTTP status through its apperr code.
func fail(err error) (any, int, error) {
	return nil, apperr.HTTPStatus(err), err
}

func authUser(r *http.Request) (int, error) {
	id, ok := middlewares.UserID(r)
	if !ok {
		return 0, apperr.Unauthorized("unauthorized")
	}
	return id, nil
}

func urlInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, apperr.InvalidArg("invalid " + name)
	}
	return v, nil
}

// optionalInt reads a form or query value, returning def when it is absent.
func optionalInt(r *http.Request, name string, def int) (int, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidArg("invalid " + name)
	}
	return v, nil
}
