package routes

import (
	"net/http"
	"strconv"

	"cuahang/cuahang/controllers"

	"github.com/go-chi/chi/v5"
)

type qrResponse struct {
	Status  string `json:"status"`
	QRCode  string `json:"qrCode,omitempty"`
	Message string `json:"message,omitempty"`
}

func QRCodeRoutes(ctrl *controllers.QRController) chi.Router {
	r := chi.NewRouter()
	r.Get("/generate", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		width, _ := strconv.Atoi(q.Get("width"))
		height, _ := strconv.Atoi(q.Get("height"))
		png, err := ctrl.Generate(q.Get("text"), width, height)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, qrResponse{Status: "error", Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, qrResponse{Status: "success", QRCode: png})
	})
	return r
}
