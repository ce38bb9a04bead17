package models

import (
	"context"
	"errors"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/shopspring/decimal"
)

type Client struct {
	ID            int       `gorm:"primary_key" json:"id"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	Name          string    `gorm:"size:100;not null" json:"name" binding:"required"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Email         string    `gorm:"size:100" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	Gstin         string    `gorm:"size:20" json:"gstin"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Gstin         string `json:"gstin"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewClient) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[Client](ctx, userId, "name", input.Name, id); err != nil {
		return err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	return nil
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	client := Client{
		UserId:        userId,
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		Gstin:         input.Gstin,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func UpdateClient(ctx context.Context, id int, input *NewClient) (*Client, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	client, err := utils.FetchModel[Client](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	client.Name = input.Name
	client.ContactPerson = input.ContactPerson
	client.Phone = input.Phone
	client.Email = input.Email
	client.Address = input.Address
	client.Gstin = input.Gstin

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func DeleteClient(ctx context.Context, id int) (*Client, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	client, err := utils.FetchModel[Client](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	// Do not delete while jobs or invoices reference this client.
	count, err := utils.ResourceCountWhere[Job](ctx, userId, "client_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("client has jobs")
	}
	count, err = utils.ResourceCountWhere[Invoice](ctx, userId, "client_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("client has invoices")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}
	return utils.FetchModel[Client](ctx, userId, id)
}

func GetClients(ctx context.Context, name *string) ([]*Client, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	var results []*Client

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

type ClientStatement struct {
	Client           *Client         `json:"client"`
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	Invoices         []*Invoice      `json:"invoices"`
}

// ClientStatement is a read-only aggregate over the client's invoices:
// total invoiced, total collected and the outstanding balance.
func GetClientStatement(ctx context.Context, clientId int) (*ClientStatement, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	client, err := utils.FetchModel[Client](ctx, userId, clientId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var invoices []*Invoice
	if err := db.WithContext(ctx).
		Where("user_id = ? AND client_id = ?", userId, clientId).
		Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}

	statement := ClientStatement{
		Client:           client,
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		Invoices:         invoices,
	}
	for _, inv := range invoices {
		if inv.Status == InvoiceStatusCancelled {
			continue
		}
		statement.TotalInvoiced = statement.TotalInvoiced.Add(inv.TotalAmount)
		statement.TotalPaid = statement.TotalPaid.Add(inv.PaidAmount)
		statement.TotalOutstanding = statement.TotalOutstanding.Add(inv.BalanceAmount)
	}
	return &statement, nil
}
