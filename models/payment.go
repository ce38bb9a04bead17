package models

import (
	"context"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID            int             `gorm:"primary_key" json:"id"`
	UserId        int             `gorm:"index;not null" json:"user_id"`
	InvoiceId     int             `gorm:"index;not null" json:"invoice_id"`
	Invoice       *Invoice        `gorm:"foreignKey:InvoiceId" json:"invoice,omitempty"`
	ClientId      int             `gorm:"index;not null" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientId" json:"client,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"type:enum('CASH','UPI','BANK_TRANSFER','CHEQUE');not null" json:"payment_method"`
	ReferenceNo   string          `gorm:"size:100" json:"reference_no"`
	PaymentDate   time.Time       `gorm:"not null" json:"payment_date"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	InvoiceId     int             `json:"invoice_id" binding:"required"`
	ClientId      int             `json:"client_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod PaymentMethod   `json:"payment_method" binding:"required"`
	ReferenceNo   string          `json:"reference_no"`
	PaymentDate   string          `json:"payment_date"`
	Notes         string          `json:"notes"`
}

// RecordPayment applies a payment against an invoice. Precondition order is
// part of the contract (callers distinguish the failures):
//  1. required fields present, method valid, non-CASH needs a reference no
//  2. invoice exists for this user and belongs to the named client
//  3. amount strictly positive
//  4. amount does not exceed the outstanding balance
//
// The payment row and the invoice balance/status move in one transaction;
// the invoice update is guarded on the balance previously read so two
// concurrent payments cannot overdraw.
func RecordPayment(ctx context.Context, input *NewPayment) (*Payment, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if input.InvoiceId == 0 || input.ClientId == 0 || input.Amount.IsZero() || input.PaymentMethod == "" {
		return nil, utils.ErrorInvalidInput
	}
	if !input.PaymentMethod.Valid() {
		return nil, utils.ErrorInvalidInput
	}
	if input.PaymentMethod != PaymentMethodCash && input.ReferenceNo == "" {
		return nil, utils.ErrorInvalidInput
	}

	invoice, err := utils.FetchModel[Invoice](ctx, userId, input.InvoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.ClientId != input.ClientId {
		return nil, utils.ErrorRecordNotFound
	}

	amount := utils.Round2(input.Amount)
	if !amount.IsPositive() {
		return nil, utils.ErrorInvalidAmount
	}
	if amount.GreaterThan(invoice.BalanceAmount) {
		return nil, utils.ErrorExceedsBalance
	}

	paymentDate := time.Now()
	if input.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", input.PaymentDate)
		if err != nil {
			return nil, utils.ErrorInvalidInput
		}
	}

	paidAmount := utils.Round2(invoice.PaidAmount.Add(amount))
	balanceAmount := utils.Round2(invoice.BalanceAmount.Sub(amount))
	status := DeriveInvoiceStatus(paidAmount, balanceAmount, invoice.Status)

	db := config.GetDB()
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	payment := Payment{
		UserId:        userId,
		InvoiceId:     invoice.ID,
		ClientId:      invoice.ClientId,
		Amount:        amount,
		PaymentMethod: input.PaymentMethod,
		ReferenceNo:   input.ReferenceNo,
		PaymentDate:   paymentDate,
		Notes:         input.Notes,
	}
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// guard on the balance we computed against: if another payment landed
	// between our read and this write, RowsAffected is 0 and we abort
	// instead of overdrawing the invoice
	res := tx.WithContext(ctx).Model(&Invoice{}).
		Where("id = ? AND user_id = ? AND balance_amount = ?", invoice.ID, userId, invoice.BalanceAmount).
		Updates(map[string]interface{}{
			"paid_amount":    paidAmount,
			"balance_amount": balanceAmount,
			"status":         status,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected != 1 {
		tx.Rollback()
		return nil, utils.ErrorConcurrentBalanceConflict
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return utils.FetchModel[Payment](ctx, userId, payment.ID, "Invoice", "Client")
}

func GetPaymentsForInvoice(ctx context.Context, invoiceId int) ([]*Payment, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}
	if err := utils.ValidateResourceId[Invoice](ctx, userId, invoiceId); err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	db := config.GetDB()
	var results []*Payment
	err := db.WithContext(ctx).
		Where("user_id = ? AND invoice_id = ?", userId, invoiceId).
		Order("payment_date DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetPayments(ctx context.Context, clientId *int) ([]*Payment, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if clientId != nil && *clientId > 0 {
		dbCtx = dbCtx.Where("client_id = ?", *clientId)
	}
	var results []*Payment
	err := dbCtx.Preload("Invoice").Order("payment_date DESC, id DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
