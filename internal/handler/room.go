package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/joincode"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
)

type RoomHandler struct {
	roomStore *store.RoomStore
	userStore *store.UserStore
	notifier  *Notifier
	reporter  errs.Reporter
	logger    *slog.Logger
}

func NewRoomHandler(rs *store.RoomStore, us *store.UserStore, notifier *Notifier, reporter errs.Reporter, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		roomStore: rs,
		userStore: us,
		notifier:  notifier,
		reporter:  reporter,
		logger:    logger,
	}
}

type roomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create makes a new room owned by the calling chairperson, with a fresh
// join code.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeErrorMsg(w, http.StatusBadRequest, "name is required")
		return
	}

	room, err := h.roomStore.Create(ac.UserID, req.Name, req.Description)
	if err != nil {
		h.logger.Error("create room", "owner_id", ac.UserID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	h.notifier.RoomsChanged(ac.UserID, "created", room.ID)
	writeJSON(w, http.StatusCreated, room)
}

// List returns the calling chairperson's active rooms.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	rooms, err := h.roomStore.ListByOwner(ac.UserID)
	if err != nil {
		h.logger.Error("list rooms", "owner_id", ac.UserID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// Get returns one room the caller owns or belongs to. The join code is
// stripped for non-owners.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}
	if room.OwnerID != ac.UserID {
		room.JoinCode = ""
	}
	writeJSON(w, http.StatusOK, room)
}

// Archive soft-deletes a room and releases its join code. Records are kept
// for statements but the room disappears from every listing.
func (h *RoomHandler) Archive(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}
	if err := requireOwner(room, ac, "archive"); err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	if err := h.roomStore.Archive(room.ID); err != nil {
		h.logger.Error("archive room", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to archive room")
		return
	}

	h.notifier.RoomsChanged(room.OwnerID, "archived", room.ID)
	w.WriteHeader(http.StatusNoContent)
}

type joinRequest struct {
	Code string `json:"code"`
}

// Join redeems a join code for the calling student.
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !joincode.Valid(code) {
		writeErrorMsg(w, http.StatusBadRequest, "invalid join code")
		return
	}

	room, err := h.roomStore.GetByJoinCode(code)
	if err != nil {
		h.logger.Error("lookup join code", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to join room")
		return
	}
	if room == nil || room.Archived() {
		writeErrorMsg(w, http.StatusNotFound, "join code not recognized")
		return
	}
	if room.OwnerID == ac.UserID {
		writeErrorMsg(w, http.StatusBadRequest, "cannot join your own room")
		return
	}

	existing, err := h.roomStore.GetMember(room.ID, ac.UserID)
	if err != nil {
		h.logger.Error("check membership", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to join room")
		return
	}
	if existing != nil {
		writeErrorMsg(w, http.StatusConflict, "already a member of this room")
		return
	}

	member, err := h.roomStore.AddMember(room.ID, ac.UserID)
	if err != nil {
		h.logger.Error("add member", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to join room")
		return
	}

	h.notifier.MemberChanged(room, "joined", member)
	writeJSON(w, http.StatusCreated, member)
}

// JoinedRooms lists the rooms the calling student belongs to.
func (h *RoomHandler) JoinedRooms(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	joined, err := h.roomStore.ListJoinedRooms(ac.UserID)
	if err != nil {
		h.logger.Error("list joined rooms", "user_id", ac.UserID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list joined rooms")
		return
	}
	if joined == nil {
		joined = []model.JoinedRoom{}
	}
	writeJSON(w, http.StatusOK, joined)
}

type memberView struct {
	model.RoomMember
	Name string `json:"name"`
}

// Members lists a room's members with display names resolved.
func (h *RoomHandler) Members(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	members, err := h.roomStore.ListMembers(room.ID)
	if err != nil {
		h.logger.Error("list members", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	names, err := h.userStore.NamesByID(ids)
	if err != nil {
		h.logger.Error("resolve member names", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView{RoomMember: m, Name: names[m.UserID]})
	}
	writeJSON(w, http.StatusOK, views)
}

// RemoveMember lets the owner remove any student, or a student remove
// themselves (leave).
func (h *RoomHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	targetUserID := r.PathValue("userID")
	if room.OwnerID != ac.UserID && targetUserID != ac.UserID {
		writeError(w, r, h.reporter, &errs.PermissionError{
			Path:      "rooms/" + room.ID + "/members/" + targetUserID,
			Operation: "remove",
			UserID:    ac.UserID,
			Err:       errs.ErrPermissionDenied,
		})
		return
	}

	member, err := h.roomStore.GetMember(room.ID, targetUserID)
	if err != nil {
		h.logger.Error("load member", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	if member == nil {
		writeErrorMsg(w, http.StatusNotFound, "not a member of this room")
		return
	}

	if err := h.roomStore.RemoveMember(room.ID, targetUserID); err != nil {
		h.logger.Error("remove member", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	h.notifier.MemberChanged(room, "removed", member)
	w.WriteHeader(http.StatusNoContent)
}
