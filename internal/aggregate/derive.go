package aggregate

import (
	"sort"
	"time"
)

// Totals are the headline figures on both dashboards. Always derived from
// the snapshot, never stored.
type Totals struct {
	CollectedCents int64 `json:"collected_cents"`
	ExpensesCents  int64 `json:"expenses_cents"`
	NetCents       int64 `json:"net_cents"`
	Students       int   `json:"students"`
}

func (s *Snapshot) Totals() Totals {
	var t Totals
	for _, p := range s.Payments {
		t.CollectedCents += p.AmountCents
	}
	for _, e := range s.Expenses {
		t.ExpensesCents += e.AmountCents
	}
	t.NetCents = t.CollectedCents - t.ExpensesCents
	t.Students = len(s.Members)
	return t
}

// TxKind tags an entry in the merged transaction feed. The kind is assigned
// when the feed is built, never inferred from which fields happen to be set.
type TxKind string

const (
	TxExpense  TxKind = "expense"
	TxPayment  TxKind = "payment"
	TxDeadline TxKind = "deadline"
)

// Transaction is one entry in the unified cross-room feed. Date is the
// effective date: the spend/payment date, or the due date for deadlines.
type Transaction struct {
	Kind        TxKind    `json:"kind"`
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	RoomName    string    `json:"room_name"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	DeadlineID  string    `json:"deadline_id,omitempty"`
}

// RecentTransactions merges expenses, payments, and deadlines into one feed
// sorted by effective date descending, truncated to limit entries.
func RecentTransactions(s *Snapshot, limit int) []Transaction {
	txs := make([]Transaction, 0, len(s.Expenses)+len(s.Payments)+len(s.Deadlines))

	for _, e := range s.Expenses {
		txs = append(txs, Transaction{
			Kind:        TxExpense,
			ID:          e.ID,
			RoomID:      e.RoomID,
			RoomName:    e.RoomName,
			Title:       e.Title,
			AmountCents: e.AmountCents,
			Date:        e.SpentAt,
		})
	}
	for _, p := range s.Payments {
		title := p.Note
		if title == "" {
			title = "Payment"
		}
		tx := Transaction{
			Kind:        TxPayment,
			ID:          p.ID,
			RoomID:      p.RoomID,
			RoomName:    p.RoomName,
			Title:       title,
			AmountCents: p.AmountCents,
			Date:        p.PaidAt,
		}
		if p.DeadlineID != nil {
			tx.DeadlineID = *p.DeadlineID
		}
		txs = append(txs, tx)
	}
	for _, d := range s.Deadlines {
		txs = append(txs, Transaction{
			Kind:        TxDeadline,
			ID:          d.ID,
			RoomID:      d.RoomID,
			RoomName:    d.RoomName,
			Title:       d.Title,
			AmountCents: d.AmountPerStudentCents,
			Date:        d.DueAt,
		})
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})

	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs
}

// PaidRule decides when a fund deadline counts as paid. The two rules exist
// because callers genuinely differ: the dashboard treats any payment
// referencing the deadline as settling it, while the personal statement
// requires the amount to be covered.
type PaidRule int

const (
	// PaidRuleAnyPayment: paid iff at least one payment references the deadline.
	PaidRuleAnyPayment PaidRule = iota
	// PaidRuleAmountMet: paid iff payments referencing the deadline cover
	// the per-student amount.
	PaidRuleAmountMet
)

// DeadlinePaid evaluates one deadline against the snapshot's payments under
// the given rule.
func DeadlinePaid(s *Snapshot, deadlineID string, amountPerStudentCents int64, rule PaidRule) bool {
	var total int64
	for _, p := range s.Payments {
		if p.DeadlineID == nil || *p.DeadlineID != deadlineID {
			continue
		}
		if rule == PaidRuleAnyPayment {
			return true
		}
		total += p.AmountCents
	}
	if rule == PaidRuleAmountMet {
		return total >= amountPerStudentCents && amountPerStudentCents > 0
	}
	return false
}

// DeadlineStatus pairs a deadline with its computed paid state.
type DeadlineStatus struct {
	DeadlineID string `json:"deadline_id"`
	Title      string `json:"title"`
	RoomID     string `json:"room_id"`
	RoomName   string `json:"room_name"`
	Paid       bool   `json:"paid"`
}

// DeadlineStatuses evaluates every deadline in the snapshot under one rule.
func DeadlineStatuses(s *Snapshot, rule PaidRule) []DeadlineStatus {
	statuses := make([]DeadlineStatus, 0, len(s.Deadlines))
	for _, d := range s.Deadlines {
		statuses = append(statuses, DeadlineStatus{
			DeadlineID: d.ID,
			Title:      d.Title,
			RoomID:     d.RoomID,
			RoomName:   d.RoomName,
			Paid:       DeadlinePaid(s, d.ID, d.AmountPerStudentCents, rule),
		})
	}
	return statuses
}

// Dashboard is the assembled view pushed to clients: totals, the recent
// feed, and per-deadline status.
type Dashboard struct {
	Totals    Totals           `json:"totals"`
	Recent    []Transaction    `json:"recent"`
	Deadlines []DeadlineStatus `json:"deadlines"`
}

const recentLimit = 10

// BuildDashboard derives the dashboard view from a snapshot.
func BuildDashboard(s *Snapshot, rule PaidRule) Dashboard {
	return Dashboard{
		Totals:    s.Totals(),
		Recent:    RecentTransactions(s, recentLimit),
		Deadlines: DeadlineStatuses(s, rule),
	}
}
