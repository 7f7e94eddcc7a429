package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/aggregate"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
)

// RoomResolver maps a user to the rooms feeding their dashboard: owned
// rooms for a chairperson, joined rooms for a student. It also backs the
// WebSocket layer's room scoping.
type RoomResolver struct {
	roomStore *store.RoomStore
}

func NewRoomResolver(rs *store.RoomStore) *RoomResolver {
	return &RoomResolver{roomStore: rs}
}

func (rr *RoomResolver) DashboardRooms(ctx context.Context, userID, role string) ([]model.Room, error) {
	if role == model.RoleChairperson {
		return rr.roomStore.ListByOwner(userID)
	}
	joined, err := rr.roomStore.ListJoinedRooms(userID)
	if err != nil {
		return nil, err
	}
	rooms := make([]model.Room, 0, len(joined))
	for _, j := range joined {
		rooms = append(rooms, model.Room{
			ID:          j.RoomID,
			OwnerID:     j.OwnerID,
			Name:        j.RoomName,
			Description: j.RoomDescription,
		})
	}
	return rooms, nil
}

// RoomIDs resolves just the ids, for WebSocket event scoping.
func (rr *RoomResolver) RoomIDs(ctx context.Context, userID, role string) ([]string, error) {
	rooms, err := rr.DashboardRooms(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	return ids, nil
}

type DashboardHandler struct {
	resolver *RoomResolver
	reader   aggregate.Reader
	reporter errs.Reporter
	logger   *slog.Logger
}

func NewDashboardHandler(resolver *RoomResolver, reader aggregate.Reader, reporter errs.Reporter, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		resolver: resolver,
		reader:   reader,
		reporter: reporter,
		logger:   logger,
	}
}

// Get aggregates across every room the caller can see and returns totals,
// the recent transaction feed, and per-deadline paid status.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	rooms, err := h.resolver.DashboardRooms(r.Context(), ac.UserID, ac.Role)
	if err != nil {
		h.logger.Error("resolve dashboard rooms", "user_id", ac.UserID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	// A student's dashboard counts their own payments, not the whole room's.
	reader := h.reader
	if ac.Role != model.RoleChairperson {
		if scoper, ok := reader.(aggregate.UserScoper); ok {
			reader = scoper.ForUser(ac.UserID)
		}
	}

	snap, err := aggregate.Aggregate(r.Context(), reader, rooms)
	if err != nil {
		h.logger.Error("aggregate dashboard", "user_id", ac.UserID, "error", err)
		writeError(w, r, h.reporter, err)
		return
	}

	writeJSON(w, http.StatusOK, aggregate.BuildDashboard(snap, aggregate.PaidRuleAnyPayment))
}
