package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
)

type ProfileHandler struct {
	userStore *store.UserStore
	logger    *slog.Logger
}

func NewProfileHandler(us *store.UserStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{userStore: us, logger: logger}
}

type profileRequest struct {
	Name string `json:"name"`
}

// Update changes the caller's display name.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeErrorMsg(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.userStore.UpdateProfile(ac.UserID, name)
	if err != nil {
		h.logger.Error("update profile", "user_id", ac.UserID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if user == nil {
		writeErrorMsg(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Get returns the caller's own profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	user, err := h.userStore.GetUserByID(ac.UserID)
	if err != nil {
		h.logger.Error("load profile", "user_id", ac.UserID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if user == nil {
		writeErrorMsg(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
