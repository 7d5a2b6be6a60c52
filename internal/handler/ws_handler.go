package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"taskhub/internal/pkg/errs"
	"taskhub/internal/pkg/limiter"
	"taskhub/internal/pkg/logx"
	"taskhub/internal/pkg/resp"
)

// HandleWebSocket upgrades the request and hands the connection to the realtime hub.
//
// The credential travels in the "token" query parameter since browsers cannot
// set headers on a WebSocket handshake. It is checked after the upgrade so a
// bad token is answered with an "unauthorized" frame rather than an HTTP error.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := r.URL.Query().Get("token")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		deps.Hub.ServeConn(conn, token)
	}
}
