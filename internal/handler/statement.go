package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/statement"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
)

type StatementHandler struct {
	roomStore     *store.RoomStore
	expenseStore  *store.ExpenseStore
	paymentStore  *store.PaymentStore
	deadlineStore *store.DeadlineStore
	userStore     *store.UserStore
	reporter      errs.Reporter
	logger        *slog.Logger
}

func NewStatementHandler(rs *store.RoomStore, es *store.ExpenseStore, ps *store.PaymentStore, ds *store.DeadlineStore, us *store.UserStore, reporter errs.Reporter, logger *slog.Logger) *StatementHandler {
	return &StatementHandler{
		roomStore:     rs,
		expenseStore:  es,
		paymentStore:  ps,
		deadlineStore: ds,
		userStore:     us,
		reporter:      reporter,
		logger:        logger,
	}
}

// Generate builds a statement and renders it in the requested format.
// Room-wide kinds are owner only; the personal report is scoped to the
// calling student's own payments.
func (h *StatementHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	kind := statement.Kind(r.PathValue("kind"))
	if !kind.Valid() {
		writeErrorMsg(w, http.StatusBadRequest, "unknown statement kind")
		return
	}

	room, err := roomAccess(h.roomStore, r.PathValue("id"), ac)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}
	if kind != statement.KindPersonalReport {
		if err := requireOwner(room, ac, "generate statement"); err != nil {
			writeError(w, r, h.reporter, err)
			return
		}
	}

	in, err := h.buildInput(kind, room, ac)
	if err != nil {
		h.logger.Error("gather statement input", "room_id", room.ID, "kind", kind, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to build statement")
		return
	}

	if kind == statement.KindMonthly || kind == statement.KindYearly {
		period, err := parsePeriod(r, kind)
		if err != nil {
			writeErrorMsg(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Period = period
	}

	doc, err := statement.Build(kind, *in)
	if err != nil {
		writeError(w, r, h.reporter, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "preview":
		writeJSON(w, http.StatusOK, doc)
	case "pdf":
		data, err := statement.RenderPDF(doc)
		if err != nil {
			h.logger.Error("render pdf", "room_id", room.ID, "kind", kind, "error", err)
			writeErrorMsg(w, http.StatusInternalServerError, "failed to render statement")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`.pdf"`)
		w.Write(data)
	case "xlsx":
		data, err := statement.RenderExcel(doc)
		if err != nil {
			h.logger.Error("render xlsx", "room_id", room.ID, "kind", kind, "error", err)
			writeErrorMsg(w, http.StatusInternalServerError, "failed to render statement")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`.xlsx"`)
		w.Write(data)
	default:
		writeErrorMsg(w, http.StatusBadRequest, "format must be preview, pdf, or xlsx")
	}
}

func (h *StatementHandler) buildInput(kind statement.Kind, room *model.Room, ac auth.AuthContext) (*statement.Input, error) {
	deadlines, err := h.deadlineStore.ListByRoom(room.ID)
	if err != nil {
		return nil, err
	}

	in := &statement.Input{
		RoomName:    room.Name,
		GeneratedAt: time.Now().UTC(),
		Deadlines:   deadlines,
	}

	caller, err := h.userStore.GetUserByID(ac.UserID)
	if err != nil {
		return nil, err
	}
	if caller != nil {
		in.GeneratedBy = caller.Name
	}

	if kind == statement.KindPersonalReport {
		in.StudentID = ac.UserID
		if caller != nil {
			in.StudentName = caller.Name
		}
		in.Payments, err = h.paymentStore.ListByRoomAndUser(room.ID, ac.UserID)
		if err != nil {
			return nil, err
		}
		return in, nil
	}

	in.Expenses, err = h.expenseStore.ListByRoom(room.ID)
	if err != nil {
		return nil, err
	}
	in.Payments, err = h.paymentStore.ListByRoom(room.ID)
	if err != nil {
		return nil, err
	}
	in.Members, err = h.roomStore.ListMembers(room.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(in.Members)+len(in.Payments))
	for _, m := range in.Members {
		ids = append(ids, m.UserID)
	}
	for _, p := range in.Payments {
		ids = append(ids, p.UserID)
	}
	in.MemberNames, err = h.userStore.NamesByID(ids)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func parsePeriod(r *http.Request, kind statement.Kind) (statement.Period, error) {
	var period statement.Period

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		period.Year = time.Now().UTC().Year()
	} else {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 1970 || year > 9999 {
			return period, errInvalidPeriod("year")
		}
		period.Year = year
	}

	if kind == statement.KindMonthly {
		month, err := strconv.Atoi(r.URL.Query().Get("month"))
		if err != nil || month < 1 || month > 12 {
			return period, errInvalidPeriod("month")
		}
		period.Month = time.Month(month)
	}
	return period, nil
}

type errInvalidPeriod string

func (e errInvalidPeriod) Error() string {
	return "invalid or missing " + string(e) + " parameter"
}
