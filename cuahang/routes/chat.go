// cuahang/routes/chat.go
package routes

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"cuahang/cuahang/config"
	"cuahang/cuahang/controllers"
	"cuahang/cuahang/middlewares"
	"cuahang/cuahang/utils/logging"
	"cuahang/cuahang/utils/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type partnersResponse struct {
	Partners []types.ChatPartner `json:"partners"`
	Unread   int64               `json:"unread"`
}

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Get("/stores", handleJSON(func(r *http.Request) (any, int, error) {
			stores, err := ctrl.ListStores(r.Context())
			if err != nil {
				return fail(err)
			}
			return stores, http.StatusOK, nil
		}))

		gr.Get("/stores/{store_id}/partners", handleJSON(func(r *http.Request) (any, int, error) {
			userID, storeID, err := userAndStore(r)
			if err != nil {
				return fail(err)
			}
			partners, err := ctrl.Partners(r.Context(), userID, storeID)
			if err != nil {
				return fail(err)
			}
			unread, err := ctrl.Unread(r.Context(), userID, storeID)
			if err != nil {
				return fail(err)
			}
			return partnersResponse{Partners: partners, Unread: unread.Unread}, http.StatusOK, nil
		}))

		gr.Get("/stores/{store_id}/history/{partner_id}", handleJSON(func(r *http.Request) (any, int, error) {
			userID, storeID, err := userAndStore(r)
			if err != nil {
				return fail(err)
			}
			partnerID, err := urlInt(r, "partner_id")
			if err != nil {
				return fail(err)
			}
			msgs, err := ctrl.History(r.Context(), userID, storeID, partnerID)
			if err != nil {
				return fail(err)
			}
			return msgs, http.StatusOK, nil
		}))

		gr.Post("/stores/{store_id}/read/{partner_id}", handleJSON(func(r *http.Request) (any, int, error) {
			userID, storeID, err := userAndStore(r)
			if err != nil {
				return fail(err)
			}
			partnerID, err := urlInt(r, "partner_id")
			if err != nil {
				return fail(err)
			}
			n, err := ctrl.MarkRead(r.Context(), userID, storeID, partnerID)
			if err != nil {
				return fail(err)
			}
			return map[string]int64{"updated": n}, http.StatusOK, nil
		}))

		gr.Get("/stores/{store_id}/unread", handleJSON(func(r *http.Request) (any, int, error) {
			userID, storeID, err := userAndStore(r)
			if err != nil {
				return fail(err)
			}
			count, err := ctrl.Unread(r.Context(), userID, storeID)
			if err != nil {
				return fail(err)
			}
			return count, http.StatusOK, nil
		}))

		gr.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := middlewares.UserID(r)
			conn, err := websocket.Accept(w, r, acceptOptions(cfg))
			if err != nil {
				logging.ErrorLogger.Error("websocket accept error", zap.Error(err))
				return
			}
			// The router's request timeout must not end a long-lived socket.
			ctrl.ChatWebSocket(context.WithoutCancel(r.Context()), conn, userID)
		})
	})
	return r
}

func userAndStore(r *http.Request) (int, int, error) {
	userID, err := authUser(r)
	if err != nil {
		return 0, 0, err
	}
	storeID, err := urlInt(r, "store_id")
	if err != nil {
		return 0, 0, err
	}
	return userID, storeID, nil
}

func acceptOptions(cfg config.Config) *websocket.AcceptOptions {
	if len(cfg.CORSOrigins) == 0 || slices.Contains(cfg.CORSOrigins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	// OriginPatterns match hosts, CORS origins carry a scheme.
	patterns := make([]string, 0, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		o = strings.TrimPrefix(o, "https://")
		patterns = append(patterns, strings.TrimPrefix(o, "http://"))
	}
	return &websocket.AcceptOptions{OriginPatterns: patterns}
}
