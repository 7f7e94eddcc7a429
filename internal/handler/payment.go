package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/money"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
)

type PaymentHandler struct {
	paymentStore  *store.PaymentStore
	deadlineStore *store.DeadlineStore
	roomStore     *store.RoomStore
	notifier      *Notifier
	reporter      errs.Reporter
	logger        *slog.Logger
}

func NewPaymentHandler(ps *store.PaymentStore, ds *store.DeadlineStore, rs *store.RoomStore, notifier *Notifier, reporter errs.Reporter, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentStore:  ps,
		deadlineStore: ds,
		roomStore:     rs,
		notifier:      notifier,
		reporter:      reporter,
		logger:        logger,
	}
}

type paymentRequest struct {
	Amount     string  `json:"amount"`
	Note       string  `json:"note"`
	Date       string  `json:"date"`
	DeadlineID *string `json:"deadline_id"`
}

// Create self-reports a payment by the calling student. The payment may
// reference the deadline it settles; the deadline must exist in this room.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}
	if room.OwnerID == ac.UserID {
		writeErrorMsg(w, http.StatusBadRequest, "chairpersons record student payments via mark-paid")
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	payment, err := h.record(w, room, ac.UserID, ac.UserID, req)
	if err != nil {
		return // response already written
	}

	h.notifier.RecordChanged(room, "payment", "created", payment.ID)
	writeJSON(w, http.StatusCreated, payment)
}

type markPaidRequest struct {
	paymentRequest
	UserID string `json:"user_id"`
}

// MarkPaid lets the chairperson record a payment on behalf of a student,
// typically cash handed over in person.
func (h *PaymentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}
	if err := requireOwner(room, ac, "mark paid"); err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	var req markPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" {
		writeErrorMsg(w, http.StatusBadRequest, "user_id is required")
		return
	}

	member, err := h.roomStore.GetMember(room.ID, req.UserID)
	if err != nil {
		h.logger.Error("check membership", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to record payment")
		return
	}
	if member == nil {
		writeErrorMsg(w, http.StatusNotFound, "student is not a member of this room")
		return
	}

	payment, err := h.record(w, room, req.UserID, ac.UserID, req.paymentRequest)
	if err != nil {
		return
	}

	h.notifier.RecordChanged(room, "payment", "created", payment.ID)
	writeJSON(w, http.StatusCreated, payment)
}

// record validates and stores one payment. On failure it writes the error
// response and returns a non-nil error so callers just return.
func (h *PaymentHandler) record(w http.ResponseWriter, room *model.Room, userID, recordedBy string, req paymentRequest) (*model.Payment, error) {
	amountCents, err := money.Parse(req.Amount)
	if err != nil || amountCents <= 0 {
		writeErrorMsg(w, http.StatusBadRequest, "amount must be a positive decimal")
		return nil, fmt.Errorf("invalid amount")
	}

	paidAt := time.Now().UTC()
	if req.Date != "" {
		paidAt, err = parseDate(req.Date)
		if err != nil {
			writeErrorMsg(w, http.StatusBadRequest, err.Error())
			return nil, err
		}
	}

	if req.DeadlineID != nil {
		deadline, err := h.deadlineStore.GetByID(*req.DeadlineID)
		if err != nil {
			h.logger.Error("load deadline", "deadline_id", *req.DeadlineID, "error", err)
			writeErrorMsg(w, http.StatusInternalServerError, "failed to record payment")
			return nil, err
		}
		if deadline == nil || deadline.RoomID != room.ID {
			writeErrorMsg(w, http.StatusBadRequest, "deadline does not belong to this room")
			return nil, fmt.Errorf("deadline not in room")
		}
	}

	payment, err := h.paymentStore.Create(room.ID, userID, req.DeadlineID, amountCents, req.Note, paidAt, recordedBy)
	if err != nil {
		h.logger.Error("create payment", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to record payment")
		return nil, err
	}
	return payment, nil
}

// List returns a room's payments: all of them for the owner, the caller's
// own for a student.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	var payments []model.Payment
	if room.OwnerID == ac.UserID {
		payments, err = h.paymentStore.ListByRoom(room.ID)
	} else {
		payments, err = h.paymentStore.ListByRoomAndUser(room.ID, ac.UserID)
	}
	if err != nil {
		h.logger.Error("list payments", "room_id", room.ID, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list payments")
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}
