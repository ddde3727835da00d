// cuahang/routes/files.go
package routes

import (
	"io"
	"mime"
	"net/http"

	"cuahang/cuahang/config"
	"cuahang/cuahang/controllers"
	"cuahang/cuahang/middlewares"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/logging"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const multipartOverhead = 1 << 20

func FileRoutes(ctrl *controllers.FilesController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	upload := handleJSON(func(r *http.Request) (any, int, error) {
		userID, err := authUser(r)
		if err != nil {
			return fail(err)
		}
		if err := r.ParseMultipartForm(controllers.MaxChatUpload); err != nil {
			return fail(apperr.Wrap(apperr.CodeInvalidArgument, "invalid upload", err))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return fail(apperr.Wrap(apperr.CodeInvalidArgument, "file is required", err))
		}
		defer file.Close()

		resp, err := ctrl.UploadChatFile(r.Context(), userID, header.Filename, file, header.Size)
		if err != nil {
			return fail(err)
		}
		return resp, http.StatusOK, nil
	})
	r.Post("/upload/chat", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, controllers.MaxChatUpload+multipartOverhead)
		upload(w, r)
	})

	r.Get("/chat/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		body, contentType, err := ctrl.OpenChatFile(r.Context(), name)
		if err != nil {
			http.Error(w, err.Error(), apperr.HTTPStatus(err))
			return
		}
		defer body.Close()
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if !controllers.Inline(contentType) {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		}
		if _, err := io.Copy(w, body); err != nil {
			logging.ErrorLogger.Error("chat file stream error", zap.Error(err))
		}
	})
	return r
}
