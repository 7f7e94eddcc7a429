package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/money"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
)

type DeadlineHandler struct {
	deadlineStore *store.DeadlineStore
	roomStore     *store.RoomStore
	notifier      *Notifier
	reporter      errs.Reporter
	logger        *slog.Logger
}

func NewDeadlineHandler(ds *store.DeadlineStore, rs *store.RoomStore, notifier *Notifier, reporter errs.Reporter, logger *slog.Logger) *DeadlineHandler {
	return &DeadlineHandler{
		deadlineStore: ds,
		roomStore:     rs,
		notifier:      notifier,
		reporter:      reporter,
		logger:        logger,
	}
}

type deadlineRequest struct {
	Title            string `json:"title"`
	AmountPerStudent string `json:"amount_per_student"`
	DueDate          string `json:"due_date"`
	BillingPeriod    string `json:"billing_period"`
	Announcement     string `json:"announcement"`
}

// Create announces a fund deadline: every student owes the per-student
// amount by the due date. Owner only.
func (h *DeadlineHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}
	if err := requireOwner(room, ac, "create deadline"); err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	var req deadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeErrorMsg(w, http.StatusBadRequest, "title is required")
		return
	}
	amountCents, err := money.Parse(req.AmountPerStudent)
	if err != nil || amountCents <= 0 {
		writeErrorMsg(w, http.StatusBadRequest, "amount_per_student must be a positive decimal")
		return
	}
	dueAt, err := parseDate(req.DueDate)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	deadline, err := h.deadlineStore.Create(room.ID, req.Title, amountCents, dueAt, req.BillingPeriod, req.Announcement)
	if err != nil {
		h.logger.Error("create deadline", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to create deadline")
		return
	}

	h.notifier.RecordChanged(room, "deadline", "created", deadline.ID)
	writeJSON(w, http.StatusCreated, deadline)
}

// List returns a room's fund deadlines, soonest due date last.
func (h *DeadlineHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	deadlines, err := h.deadlineStore.ListByRoom(room.ID)
	if err != nil {
		h.logger.Error("list deadlines", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list deadlines")
		return
	}
	if deadlines == nil {
		deadlines = []model.FundDeadline{}
	}
	writeJSON(w, http.StatusOK, deadlines)
}
