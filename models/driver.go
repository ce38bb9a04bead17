package models

import (
	"context"
	"errors"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
)

type Driver struct {
	ID        int          `gorm:"primary_key" json:"id"`
	UserId    int          `gorm:"index;not null" json:"user_id"`
	Name      string       `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone     string       `gorm:"size:20" json:"phone"`
	LicenseNo string       `gorm:"size:50;not null" json:"license_no" binding:"required"`
	Address   string       `gorm:"type:text" json:"address"`
	Status    DriverStatus `gorm:"type:enum('ACTIVE','INACTIVE');default:ACTIVE" json:"status"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDriver struct {
	Name      string       `json:"name" binding:"required"`
	Phone     string       `json:"phone"`
	LicenseNo string       `json:"license_no" binding:"required"`
	Address   string       `json:"address"`
	Status    DriverStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

func (input *NewDriver) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[Driver](ctx, userId, "license_no", input.LicenseNo, id); err != nil {
		return err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
	}
	return nil
}

func CreateDriver(ctx context.Context, input *NewDriver) (*Driver, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = DriverStatusActive
	}

	driver := Driver{
		UserId:    userId,
		Name:      input.Name,
		Phone:     input.Phone,
		LicenseNo: input.LicenseNo,
		Address:   input.Address,
		Status:    status,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

func UpdateDriver(ctx context.Context, id int, input *NewDriver) (*Driver, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	driver, err := utils.FetchModel[Driver](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	driver.Name = input.Name
	driver.Phone = input.Phone
	driver.LicenseNo = input.LicenseNo
	driver.Address = input.Address
	if input.Status != "" {
		driver.Status = input.Status
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}

func DeleteDriver(ctx context.Context, id int) (*Driver, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	driver, err := utils.FetchModel[Driver](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Job](ctx, userId, "driver_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("driver has jobs")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}

func GetDriver(ctx context.Context, id int) (*Driver, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}
	return utils.FetchModel[Driver](ctx, userId, id)
}

func GetDrivers(ctx context.Context, name *string, status *DriverStatus) ([]*Driver, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	var results []*Driver

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
