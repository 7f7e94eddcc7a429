package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/money"
)

const dateLayout = "Jan 2, 2006"

// Period is a calendar filter. Month zero means the whole year. Record
// dates are bucketed in UTC.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month,omitempty"`
}

func (p Period) contains(t time.Time) bool {
	t = t.UTC()
	if t.Year() != p.Year {
		return false
	}
	return p.Month == 0 || t.Month() == p.Month
}

func (p Period) String() string {
	if p.Month == 0 {
		return fmt.Sprintf("the Year %d", p.Year)
	}
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// Input carries everything a statement needs. Records are room-scoped; the
// caller resolves member display names up front so building stays pure.
type Input struct {
	RoomName    string
	GeneratedBy string
	GeneratedAt time.Time

	Expenses  []model.Expense
	Payments  []model.Payment
	Deadlines []model.FundDeadline
	Members   []model.RoomMember

	// MemberNames maps user IDs to display names.
	MemberNames map[string]string

	// Period applies to the monthly and yearly kinds only.
	Period Period

	// StudentID and StudentName scope the personal report. Payments must
	// already be filtered to this student for that kind.
	StudentID   string
	StudentName string
}

func (in *Input) memberName(userID string) string {
	if name, ok := in.MemberNames[userID]; ok && name != "" {
		return name
	}
	if len(userID) > 5 {
		return userID[:5]
	}
	return userID
}

// Build computes the statement for one kind. Empty datasets return an error
// wrapping errs.ErrNoData, which callers surface as a recoverable
// "nothing to report" condition.
func Build(kind Kind, in Input) (*PreviewDocument, error) {
	switch kind {
	case KindExpenseSummary:
		return buildExpenseSummary(in)
	case KindCollectionSummary:
		return buildCollectionSummary(in)
	case KindMonthly, KindYearly:
		return buildPeriodReport(kind, in)
	case KindPersonalReport:
		return buildPersonalReport(in)
	default:
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
}

func buildExpenseSummary(in Input) (*PreviewDocument, error) {
	if len(in.Expenses) == 0 {
		return nil, fmt.Errorf("no expenses to report: %w", errs.ErrNoData)
	}

	tbl := Table{
		Name:    "Expenses",
		Columns: []string{"Date", "Title", "Description", "Amount (PHP)"},
	}
	var total int64
	for _, e := range in.Expenses {
		tbl.Rows = append(tbl.Rows, []string{
			e.SpentAt.UTC().Format(dateLayout),
			e.Title,
			e.Description,
			money.Format(e.AmountCents),
		})
		total += e.AmountCents
	}

	doc := newDocument(KindExpenseSummary, in, "Summary of Expenses",
		"A breakdown of all expenses, showing where the collected funds were spent.")
	doc.Tables = []Table{tbl}
	doc.Summary = []SummaryLine{
		{Label: "Total Expenses", Value: "PHP " + money.Format(total)},
	}
	doc.FileName = fileName("expense_summary", in.RoomName)
	return doc, nil
}

func buildCollectionSummary(in Input) (*PreviewDocument, error) {
	if len(in.Members) == 0 {
		return nil, fmt.Errorf("no members to report: %w", errs.ErrNoData)
	}

	var duePerStudent int64
	for _, d := range in.Deadlines {
		duePerStudent += d.AmountPerStudentCents
	}

	paidByUser := make(map[string]int64)
	var totalCollected int64
	for _, p := range in.Payments {
		paidByUser[p.UserID] += p.AmountCents
		totalCollected += p.AmountCents
	}

	tbl := Table{
		Name:    "Collection Summary",
		Columns: []string{"Student Name", "Total Due (PHP)", "Total Paid (PHP)", "Balance (PHP)"},
	}
	for _, m := range in.Members {
		paid := paidByUser[m.UserID]
		tbl.Rows = append(tbl.Rows, []string{
			in.memberName(m.UserID),
			money.Format(duePerStudent),
			money.Format(paid),
			money.Format(duePerStudent - paid),
		})
	}

	totalOwed := duePerStudent*int64(len(in.Members)) - totalCollected

	doc := newDocument(KindCollectionSummary, in, "Summary of Collection",
		"An overview of total funds collected, payment status per student, and collection progress.")
	doc.Tables = []Table{tbl}
	doc.Summary = []SummaryLine{
		{Label: "Total Collected", Value: "PHP " + money.Format(totalCollected)},
		{Label: "Total Outstanding Balance", Value: "PHP " + money.Format(totalOwed)},
	}
	doc.FileName = fileName("collection_summary", in.RoomName)
	return doc, nil
}

func buildPeriodReport(kind Kind, in Input) (*PreviewDocument, error) {
	period := in.Period
	if kind == KindYearly {
		period.Month = 0
	}

	var payments []model.Payment
	for _, p := range in.Payments {
		if period.contains(p.PaidAt) {
			payments = append(payments, p)
		}
	}
	var expenses []model.Expense
	for _, e := range in.Expenses {
		if period.contains(e.SpentAt) {
			expenses = append(expenses, e)
		}
	}

	if len(payments) == 0 && len(expenses) == 0 {
		return nil, fmt.Errorf("no financial activity for %s: %w", period, errs.ErrNoData)
	}

	collected := Table{
		Name:    "Funds Collected",
		Columns: []string{"Date", "Student", "Note", "Amount (PHP)"},
	}
	var totalCollected int64
	for _, p := range payments {
		collected.Rows = append(collected.Rows, []string{
			p.PaidAt.UTC().Format(dateLayout),
			in.memberName(p.UserID),
			p.Note,
			money.Format(p.AmountCents),
		})
		totalCollected += p.AmountCents
	}

	spent := Table{
		Name:    "Expenses",
		Columns: []string{"Date", "Title", "Description", "Amount (PHP)"},
	}
	var totalExpenses int64
	for _, e := range expenses {
		spent.Rows = append(spent.Rows, []string{
			e.SpentAt.UTC().Format(dateLayout),
			e.Title,
			e.Description,
			money.Format(e.AmountCents),
		})
		totalExpenses += e.AmountCents
	}

	doc := newDocument(kind, in,
		fmt.Sprintf("Financial Report for %s", period),
		fmt.Sprintf("All financial activities for %s.", period))
	doc.Tables = []Table{collected, spent}
	doc.Summary = []SummaryLine{
		{Label: "Total Collected", Value: "PHP " + money.Format(totalCollected)},
		{Label: "Total Expenses", Value: "PHP " + money.Format(totalExpenses)},
		{Label: "Net Change", Value: "PHP " + money.Format(totalCollected-totalExpenses), Bold: true},
	}
	doc.FileName = fileName(string(kind)+"_"+period.String(), in.RoomName)
	return doc, nil
}

func buildPersonalReport(in Input) (*PreviewDocument, error) {
	if len(in.Deadlines) == 0 {
		return nil, fmt.Errorf("no fund deadlines to report: %w", errs.ErrNoData)
	}

	paidByDeadline := make(map[string]int64)
	var totalPaid int64
	for _, p := range in.Payments {
		if p.DeadlineID != nil {
			paidByDeadline[*p.DeadlineID] += p.AmountCents
		}
		totalPaid += p.AmountCents
	}

	tbl := Table{
		Name:    "Personal Statement",
		Columns: []string{"Deadline Title", "Due Date", "Amount Due (PHP)", "Amount Paid (PHP)", "Status"},
	}
	var totalDue int64
	for _, d := range in.Deadlines {
		paid := paidByDeadline[d.ID]
		status := "Unpaid"
		if paid >= d.AmountPerStudentCents && d.AmountPerStudentCents > 0 {
			status = "Paid"
		}
		tbl.Rows = append(tbl.Rows, []string{
			d.Title,
			d.DueAt.UTC().Format(dateLayout),
			money.Format(d.AmountPerStudentCents),
			money.Format(paid),
			status,
		})
		totalDue += d.AmountPerStudentCents
	}

	doc := newDocument(KindPersonalReport, in, "Personal Expense Report",
		"A detailed report of all your required contributions and payments for this room.")
	doc.GeneratedBy = in.StudentName
	doc.Tables = []Table{tbl}
	doc.Summary = []SummaryLine{
		{Label: "Total Amount Due", Value: "PHP " + money.Format(totalDue)},
		{Label: "Total Amount Paid", Value: "PHP " + money.Format(totalPaid)},
		{Label: "Remaining Balance", Value: "PHP " + money.Format(totalDue-totalPaid), Bold: true},
	}
	doc.FileName = fileName("Personal_Statement_"+in.StudentName, in.RoomName)
	return doc, nil
}

func newDocument(kind Kind, in Input, subtitle, description string) *PreviewDocument {
	title := "KitaMo! Financial Statement"
	if kind == KindPersonalReport {
		title = "KitaMo! Personal Statement"
	}
	return &PreviewDocument{
		Kind:        kind,
		Title:       title,
		Subtitle:    subtitle,
		Description: description,
		RoomName:    in.RoomName,
		GeneratedBy: in.GeneratedBy,
		GeneratedAt: in.GeneratedAt,
	}
}

func fileName(parts ...string) string {
	name := strings.Join(parts, "_")
	return strings.ReplaceAll(name, " ", "_")
}
