package websocket

import (
	"context"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
)

// RoomIDsFunc resolves the room ids a user may receive events for: owned
// rooms for a chairperson, joined rooms for a student.
type RoomIDsFunc func(ctx context.Context, userID, role string) ([]string, error)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as Hub clients scoped to the caller's rooms. The
// auth middleware must run before this handler.
func HandleWebSocket(hub *Hub, roomIDs RoomIDsFunc, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ids, err := roomIDs(r.Context(), user.UserID, user.Role)
		if err != nil {
			logger.Error("resolve rooms for websocket", "user_id", user.UserID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, user.UserID, ids)
		client.Run(r.Context())
	}
}
