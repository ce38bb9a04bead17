package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// invoice numbers look like INV/25-26/42
	InvoiceNumberPrefix = "INV"

	// bounded retry for invoice-number uniqueness collisions
	maxInvoiceNumberAttempts = 3

	invoiceDueDays = 30
)

// GST is a fixed 9% CGST + 9% SGST on the subtotal. Domain constant, not
// configurable.
var gstComponentRate = decimal.New(9, -2)

type Invoice struct {
	ID            int             `gorm:"primary_key" json:"id"`
	UserId        int             `gorm:"index;not null;uniqueIndex:idx_user_invoice_number" json:"user_id"`
	ClientId      int             `gorm:"index;not null" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientId" json:"client,omitempty"`
	InvoiceNumber string          `gorm:"size:50;not null;uniqueIndex:idx_user_invoice_number" json:"invoice_number"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"tax"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"paid_amount"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance_amount"`
	Status        InvoiceStatus   `gorm:"type:enum('DRAFT','SENT','PENDING','PARTIAL','PAID','OVERDUE','CANCELLED');default:DRAFT" json:"status"`
	DueDate       time.Time       `gorm:"not null;index" json:"due_date"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Jobs          []Job           `gorm:"foreignKey:InvoiceId" json:"jobs,omitempty"`
	Payments      []Payment       `gorm:"foreignKey:InvoiceId" json:"payments,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	ClientId  int    `json:"client_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Notes     string `json:"notes"`
}

type InvoiceFilter struct {
	ClientId  *int
	Status    *InvoiceStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// NextInvoiceNumber computes the next sequential number in the fiscal year
// containing date: INV/<YY-YY>/<seq>, seq starting at 1 per fiscal year.
// Pure read-then-compute, no locking: two concurrent callers may get the
// same candidate, which the caller resolves by retrying against the unique
// index on (user_id, invoice_number).
func NextInvoiceNumber(tx *gorm.DB, ctx context.Context, userId int, date time.Time) (string, error) {
	prefix := InvoiceNumberPrefix + "/" + utils.FiscalYearLabel(date) + "/"

	var last Invoice
	err := tx.WithContext(ctx).
		Where("user_id = ? AND invoice_number LIKE ?", userId, prefix+"%").
		Order("created_at DESC, id DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return prefix + "1", nil
		}
		return "", err
	}

	return prefix + strconv.Itoa(nextSequence(last.InvoiceNumber)), nil
}

// parse the integer after the last '/'; unparseable numbers restart at 1
func nextSequence(lastNumber string) int {
	idx := strings.LastIndex(lastNumber, "/")
	if idx < 0 || idx == len(lastNumber)-1 {
		return 1
	}
	seq, err := strconv.Atoi(lastNumber[idx+1:])
	if err != nil || seq < 1 {
		return 1
	}
	return seq + 1
}

func (input *NewInvoice) validate(ctx context.Context, userId int) (start time.Time, end time.Time, err error) {
	if input.ClientId == 0 || input.StartDate == "" || input.EndDate == "" {
		return start, end, utils.ErrorInvalidInput
	}
	start, err = time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		return start, end, utils.ErrorInvalidInput
	}
	end, err = time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		return start, end, utils.ErrorInvalidInput
	}
	if start.After(end) {
		return start, end, utils.ErrorInvalidInput
	}

	if err := utils.ValidateResourceId[Client](ctx, userId, input.ClientId); err != nil {
		return start, end, utils.ErrorRecordNotFound
	}
	return start, end, nil
}

// GenerateInvoice batches the client's unbilled completed jobs in
// [startDate, endDate] into one invoice:
//  1. select jobs (client, COMPLETED, invoice_id IS NULL, date in range)
//  2. subtotal / CGST / SGST / total, rounded to 2dp at every step
//  3. candidate number from NextInvoiceNumber
//  4. in one transaction: create the invoice, then claim the jobs with a
//     conditional UPDATE re-checking invoice_id IS NULL at write time
//  5. claim shortfall -> whole transaction rolls back (no retry)
//  6. duplicate invoice number -> retry the whole sequence, max 3 attempts
func GenerateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	start, end, err := input.validate(ctx, userId)
	if err != nil {
		return nil, err
	}

	var invoice *Invoice
	for attempt := 1; attempt <= maxInvoiceNumberAttempts; attempt++ {
		invoice, err = generateInvoiceOnce(ctx, userId, input, start, end)
		if err == nil {
			break
		}
		if isDuplicateInvoiceNumber(err) {
			// another caller committed the same candidate number first;
			// recompute and retry the whole create+link sequence
			continue
		}
		return nil, err
	}
	if err != nil {
		if isDuplicateInvoiceNumber(err) {
			return nil, utils.ErrorNumberGenerationExhausted
		}
		return nil, err
	}

	return utils.FetchModel[Invoice](ctx, userId, invoice.ID,
		"Client", "Jobs", "Jobs.Driver", "Jobs.Vehicle")
}

func generateInvoiceOnce(ctx context.Context, userId int, input *NewInvoice, start time.Time, end time.Time) (*Invoice, error) {
	db := config.GetDB()
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// the invoice row keeps the caller's end date; the selection range is
	// inclusive of the whole end day
	selectionEnd := end.Add(24*time.Hour - time.Nanosecond)

	var jobs []Job
	if err := tx.WithContext(ctx).
		Where("user_id = ? AND client_id = ? AND status = ? AND invoice_id IS NULL AND date BETWEEN ? AND ?",
			userId, input.ClientId, JobStatusCompleted, start, selectionEnd).
		Find(&jobs).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(jobs) == 0 {
		tx.Rollback()
		return nil, utils.ErrorNoUnbilledJobs
	}

	amounts := make([]decimal.Decimal, 0, len(jobs))
	for _, job := range jobs {
		amounts = append(amounts, job.Amount)
	}
	subtotal, tax, totalAmount := invoiceTotals(amounts)

	invoiceNumber, err := NextInvoiceNumber(tx, ctx, userId, start)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	invoice := Invoice{
		UserId:        userId,
		ClientId:      input.ClientId,
		InvoiceNumber: invoiceNumber,
		StartDate:     start,
		EndDate:       end,
		Subtotal:      subtotal,
		Tax:           tax,
		TotalAmount:   totalAmount,
		PaidAmount:    decimal.Zero,
		BalanceAmount: totalAmount,
		Status:        InvoiceStatusSent,
		DueDate:       time.Now().AddDate(0, 0, invoiceDueDays),
		Notes:         input.Notes,
	}
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	jobIds := make([]int, 0, len(jobs))
	for _, job := range jobs {
		jobIds = append(jobIds, job.ID)
	}

	// claim the jobs, re-checking invoice_id IS NULL at write time: a
	// shortfall in RowsAffected means a concurrent generation claimed some
	// of the same jobs, and a partial invoice is worse than a visible abort
	res := tx.WithContext(ctx).Model(&Job{}).
		Where("id IN ? AND invoice_id IS NULL", jobIds).
		Update("invoice_id", invoice.ID)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected != int64(len(jobIds)) {
		tx.Rollback()
		return nil, utils.ErrorConcurrentClaimConflict
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// invoiceTotals computes subtotal, GST and grand total for a set of job
// amounts. CGST and SGST are each 9% of the subtotal; every intermediate
// value is rounded to 2dp before the next step.
func invoiceTotals(amounts []decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, a := range amounts {
		subtotal = subtotal.Add(a)
	}
	subtotal = utils.Round2(subtotal)
	cgst := utils.Round2(subtotal.Mul(gstComponentRate))
	sgst := utils.Round2(subtotal.Mul(gstComponentRate))
	tax = utils.Round2(cgst.Add(sgst))
	total = utils.Round2(subtotal.Add(tax))
	return subtotal, tax, total
}

// MySQL 1062 = duplicate entry for a unique key
func isDuplicateInvoiceNumber(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// minorUnit is the smallest currency unit; balances below it count as zero
// for the PAID transition (amounts are exact decimals, so in practice the
// balance lands on exactly 0.00).
var minorUnit = decimal.New(1, -2)

// DeriveInvoiceStatus is the balance-driven status machine:
// zero balance -> PAID, part paid -> PARTIAL, otherwise keep the prior
// status (SENT/OVERDUE/...).
func DeriveInvoiceStatus(paidAmount, balanceAmount decimal.Decimal, prior InvoiceStatus) InvoiceStatus {
	if balanceAmount.LessThan(minorUnit) {
		return InvoiceStatusPaid
	}
	if paidAmount.IsPositive() && balanceAmount.IsPositive() {
		return InvoiceStatusPartial
	}
	return prior
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}
	return utils.FetchModel[Invoice](ctx, userId, id,
		"Client", "Jobs", "Jobs.Driver", "Jobs.Vehicle", "Payments")
}

func GetInvoices(ctx context.Context, filter *InvoiceFilter) ([]*Invoice, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	var results []*Invoice

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if filter != nil {
		if filter.ClientId != nil && *filter.ClientId > 0 {
			dbCtx = dbCtx.Where("client_id = ?", *filter.ClientId)
		}
		if filter.Status != nil && *filter.Status != "" {
			dbCtx = dbCtx.Where("status = ?", *filter.Status)
		}
		if filter.StartDate != nil && filter.EndDate != nil {
			dbCtx = dbCtx.Where("created_at BETWEEN ? AND ?", *filter.StartDate, *filter.EndDate)
		}
	}
	err := dbCtx.Preload("Client").Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// MarkOverdueInvoices flips SENT/PARTIAL invoices past their due date to
// OVERDUE. Runs unscoped across tenants; called from the overdue sweep.
func MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error) {
	db := config.GetDB()
	res := db.WithContext(ctx).Model(&Invoice{}).
		Where("status IN ? AND due_date < ?", []InvoiceStatus{InvoiceStatusSent, InvoiceStatusPartial}, now).
		Update("status", InvoiceStatusOverdue)
	return res.RowsAffected, res.Error
}
