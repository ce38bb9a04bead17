package models

import (
	"context"
	"errors"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/shopspring/decimal"
)

type FuelEntry struct {
	ID        int             `gorm:"primary_key" json:"id"`
	UserId    int             `gorm:"index;not null" json:"user_id"`
	VehicleId int             `gorm:"index;not null" json:"vehicle_id" binding:"required"`
	Vehicle   *Vehicle        `gorm:"foreignKey:VehicleId" json:"vehicle,omitempty"`
	Date      time.Time       `gorm:"not null" json:"date" binding:"required"`
	Litres    decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"litres"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount" binding:"required"`
	Odometer  int             `gorm:"default:0" json:"odometer"`
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFuelEntry struct {
	VehicleId int             `json:"vehicle_id" binding:"required"`
	Date      time.Time       `json:"date" binding:"required"`
	Litres    decimal.Decimal `json:"litres"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Odometer  int             `json:"odometer"`
	Notes     string          `json:"notes"`
}

func (input *NewFuelEntry) validate(ctx context.Context, userId int) error {
	if err := utils.ValidateResourceId[Vehicle](ctx, userId, input.VehicleId); err != nil {
		return errors.New("vehicle not found")
	}
	if input.Amount.IsNegative() || input.Litres.IsNegative() {
		return errors.New("amount and litres cannot be negative")
	}
	return nil
}

func CreateFuelEntry(ctx context.Context, input *NewFuelEntry) (*FuelEntry, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	entry := FuelEntry{
		UserId:    userId,
		VehicleId: input.VehicleId,
		Date:      input.Date,
		Litres:    input.Litres,
		Amount:    input.Amount,
		Odometer:  input.Odometer,
		Notes:     input.Notes,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func UpdateFuelEntry(ctx context.Context, id int, input *NewFuelEntry) (*FuelEntry, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	entry, err := utils.FetchModel[FuelEntry](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	entry.VehicleId = input.VehicleId
	entry.Date = input.Date
	entry.Litres = input.Litres
	entry.Amount = input.Amount
	entry.Odometer = input.Odometer
	entry.Notes = input.Notes

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func DeleteFuelEntry(ctx context.Context, id int) (*FuelEntry, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	entry, err := utils.FetchModel[FuelEntry](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func GetFuelEntries(ctx context.Context, vehicleId *int, startDate *time.Time, endDate *time.Time) ([]*FuelEntry, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	var results []*FuelEntry

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if vehicleId != nil && *vehicleId > 0 {
		dbCtx = dbCtx.Where("vehicle_id = ?", *vehicleId)
	}
	if startDate != nil && endDate != nil {
		dbCtx = dbCtx.Where("date BETWEEN ? AND ?", *startDate, *endDate)
	}
	err := dbCtx.Preload("Vehicle").Order("date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
