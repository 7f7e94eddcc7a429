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

type ExpenseHandler struct {
	expenseStore *store.ExpenseStore
	roomStore    *store.RoomStore
	notifier     *Notifier
	reporter     errs.Reporter
	logger       *slog.Logger
}

func NewExpenseHandler(es *store.ExpenseStore, rs *store.RoomStore, notifier *Notifier, reporter errs.Reporter, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseStore: es,
		roomStore:    rs,
		notifier:     notifier,
		reporter:     reporter,
		logger:       logger,
	}
}

type expenseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

// Create records an expense against a room's funds. Owner only; expenses
// are immutable once created.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}
	if err := requireOwner(room, ac, "create expense"); err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeErrorMsg(w, http.StatusBadRequest, "title is required")
		return
	}
	amountCents, err := money.Parse(req.Amount)
	if err != nil || amountCents <= 0 {
		writeErrorMsg(w, http.StatusBadRequest, "amount must be a positive decimal")
		return
	}
	spentAt, err := parseDate(req.Date)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := h.expenseStore.Create(room.ID, req.Title, req.Description, amountCents, spentAt, ac.UserID)
	if err != nil {
		h.logger.Error("create expense", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to create expense")
		return
	}

	h.notifier.RecordChanged(room, "expense", "created", expense.ID)
	writeJSON(w, http.StatusCreated, expense)
}

// List returns a room's expenses, newest first.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	expenses, err := h.expenseStore.ListByRoom(room.ID)
	if err != nil {
		h.logger.Error("list expenses", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}
