package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/live"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/websocket"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors onto status codes. Permission denials are
// additionally pushed through the reporter so a top-level listener sees them.
func writeError(w http.ResponseWriter, r *http.Request, reporter errs.Reporter, err error) {
	switch {
	case errors.Is(err, errs.ErrPermissionDenied):
		if reporter != nil {
			var perr *errs.PermissionError
			if !errors.As(err, &perr) {
				perr = &errs.PermissionError{
					Path:      r.URL.Path,
					Operation: r.Method,
					UserID:    auth.UserID(r.Context()),
					Err:       err,
				}
			}
			reporter.ReportPermission(r.Context(), perr)
		}
		writeErrorMsg(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, errs.ErrNotFound):
		writeErrorMsg(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrNoData):
		writeErrorMsg(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDate accepts a bare date or a full RFC 3339 timestamp. Bare dates are
// taken as UTC midnight so period bucketing stays stable.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// roomAccess loads a room and checks the caller may read it: the owner, or a
// member. Archived rooms read as absent.
func roomAccess(rooms *store.RoomStore, roomID string, ac auth.AuthContext) (*model.Room, error) {
	room, err := rooms.GetByID(roomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil || room.Archived() {
		return nil, errs.ErrNotFound
	}
	if room.OwnerID == ac.UserID {
		return room, nil
	}
	member, err := rooms.GetMember(roomID, ac.UserID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if member == nil {
		return nil, &errs.PermissionError{
			Path:      "rooms/" + roomID,
			Operation: "read",
			UserID:    ac.UserID,
			Err:       errs.ErrPermissionDenied,
		}
	}
	return room, nil
}

// requireOwner checks the caller owns the room.
func requireOwner(room *model.Room, ac auth.AuthContext, operation string) error {
	if room.OwnerID == ac.UserID {
		return nil
	}
	return &errs.PermissionError{
		Path:      "rooms/" + room.ID,
		Operation: operation,
		UserID:    ac.UserID,
		Err:       errs.ErrPermissionDenied,
	}
}

// Notifier fans a mutation out to both real-time channels: invalidation
// topics for watchers, and a change event for WebSocket clients.
type Notifier struct {
	bus *live.Bus
	hub *websocket.Hub
}

func NewNotifier(bus *live.Bus, hub *websocket.Hub) *Notifier {
	return &Notifier{bus: bus, hub: hub}
}

// RecordChanged announces a mutation of one record kind inside a room. The
// entity is singular ("payment"); its topic is the plural collection name.
func (n *Notifier) RecordChanged(room *model.Room, entity, action, id string) {
	if n == nil {
		return
	}
	if n.bus != nil {
		n.bus.Publish(live.RoomTopic(room.ID, entity+"s"))
		n.bus.Publish(live.OwnerRoomsTopic(room.OwnerID))
	}
	if n.hub != nil {
		n.hub.Broadcast(websocket.NewMessage(entity, action, room.ID, id, nil))
	}
}

// MemberChanged announces a membership change. Besides the room's channels,
// it publishes the member's own rooms topic: their dashboard must pick up a
// room appearing in or dropping out of its set.
func (n *Notifier) MemberChanged(room *model.Room, action string, member *model.RoomMember) {
	if n == nil {
		return
	}
	if n.bus != nil {
		n.bus.Publish(live.RoomTopic(room.ID, "members"))
		n.bus.Publish(live.OwnerRoomsTopic(room.OwnerID))
		n.bus.Publish(live.OwnerRoomsTopic(member.UserID))
	}
	if n.hub != nil {
		n.hub.Broadcast(websocket.NewMessage("member", action, room.ID, member.ID, nil))
	}
}

// RoomsChanged announces a change to an owner's room list itself.
func (n *Notifier) RoomsChanged(ownerID, action, roomID string) {
	if n == nil {
		return
	}
	if n.bus != nil {
		n.bus.Publish(live.OwnerRoomsTopic(ownerID))
	}
	if n.hub != nil {
		n.hub.Broadcast(websocket.NewMessage("room", action, roomID, roomID, nil))
	}
}
