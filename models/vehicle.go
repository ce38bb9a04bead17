package models

import (
	"context"
	"errors"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
)

type Vehicle struct {
	ID             int           `gorm:"primary_key" json:"id"`
	UserId         int           `gorm:"index;not null" json:"user_id"`
	RegistrationNo string        `gorm:"size:20;not null" json:"registration_no" binding:"required"`
	VehicleTypeId  int           `gorm:"index;not null" json:"vehicle_type_id" binding:"required"`
	VehicleType    *VehicleType  `gorm:"foreignKey:VehicleTypeId" json:"vehicle_type,omitempty"`
	Model          string        `gorm:"size:100" json:"model"`
	Status         VehicleStatus `gorm:"type:enum('ACTIVE','IN_MAINTENANCE','INACTIVE');default:ACTIVE" json:"status"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVehicle struct {
	RegistrationNo string        `json:"registration_no" binding:"required"`
	VehicleTypeId  int           `json:"vehicle_type_id" binding:"required"`
	Model          string        `json:"model"`
	Status         VehicleStatus `json:"status" binding:"omitempty,oneof=ACTIVE IN_MAINTENANCE INACTIVE"`
}

func (input *NewVehicle) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[Vehicle](ctx, userId, "registration_no", input.RegistrationNo, id); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[VehicleType](ctx, userId, input.VehicleTypeId); err != nil {
		return errors.New("vehicle type not found")
	}
	return nil
}

func CreateVehicle(ctx context.Context, input *NewVehicle) (*Vehicle, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = VehicleStatusActive
	}

	vehicle := Vehicle{
		UserId:         userId,
		RegistrationNo: input.RegistrationNo,
		VehicleTypeId:  input.VehicleTypeId,
		Model:          input.Model,
		Status:         status,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func UpdateVehicle(ctx context.Context, id int, input *NewVehicle) (*Vehicle, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	vehicle, err := utils.FetchModel[Vehicle](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	vehicle.RegistrationNo = input.RegistrationNo
	vehicle.VehicleTypeId = input.VehicleTypeId
	vehicle.Model = input.Model
	if input.Status != "" {
		vehicle.Status = input.Status
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func DeleteVehicle(ctx context.Context, id int) (*Vehicle, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	vehicle, err := utils.FetchModel[Vehicle](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Job](ctx, userId, "vehicle_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("vehicle has jobs")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func GetVehicle(ctx context.Context, id int) (*Vehicle, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}
	return utils.FetchModel[Vehicle](ctx, userId, id, "VehicleType")
}

func GetVehicles(ctx context.Context, registrationNo *string, status *VehicleStatus) ([]*Vehicle, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	var results []*Vehicle

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if registrationNo != nil && len(*registrationNo) > 0 {
		dbCtx = dbCtx.Where("registration_no LIKE ?", "%"+*registrationNo+"%")
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	err := dbCtx.Preload("VehicleType").Order("registration_no").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
