package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
)

type VehicleType struct {
	ID          int       `gorm:"primary_key" json:"id"`
	UserId      int       `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVehicleType struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

/*
caches:
	VehicleTypeList:$userId
*/

func vehicleTypeListCacheKey(userId int) string {
	return "VehicleTypeList:" + fmt.Sprint(userId)
}

func clearVehicleTypeListCache(userId int) {
	// cache invalidation is best-effort
	_ = config.RemoveRedisKey(vehicleTypeListCacheKey(userId))
}

func (input *NewVehicleType) validate(ctx context.Context, userId int, id int) error {
	if err := utils.ValidateUnique[VehicleType](ctx, userId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateVehicleType(ctx context.Context, input *NewVehicleType) (*VehicleType, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	vehicleType := VehicleType{
		UserId:      userId,
		Name:        input.Name,
		Description: input.Description,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&vehicleType).Error; err != nil {
		return nil, err
	}
	clearVehicleTypeListCache(userId)
	return &vehicleType, nil
}

func UpdateVehicleType(ctx context.Context, id int, input *NewVehicleType) (*VehicleType, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId, id); err != nil {
		return nil, err
	}

	vehicleType, err := utils.FetchModel[VehicleType](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	vehicleType.Name = input.Name
	vehicleType.Description = input.Description

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(vehicleType).Error; err != nil {
		return nil, err
	}
	clearVehicleTypeListCache(userId)
	return vehicleType, nil
}

func DeleteVehicleType(ctx context.Context, id int) (*VehicleType, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	vehicleType, err := utils.FetchModel[VehicleType](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	// Do not delete if any vehicle uses this type.
	count, err := utils.ResourceCountWhere[Vehicle](ctx, userId, "vehicle_type_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("used by vehicle")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(vehicleType).Error; err != nil {
		return nil, err
	}
	clearVehicleTypeListCache(userId)
	return vehicleType, nil
}

func GetVehicleType(ctx context.Context, id int) (*VehicleType, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}
	return utils.FetchModel[VehicleType](ctx, userId, id)
}

// read list, redis or db, cache result
func GetVehicleTypes(ctx context.Context) ([]*VehicleType, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	var results []*VehicleType
	exists, err := config.GetRedisObject(vehicleTypeListCacheKey(userId), &results)
	if err != nil {
		return nil, err
	}
	if !exists {
		results, err = utils.FetchAllModels[VehicleType](ctx, userId)
		if err != nil {
			return nil, err
		}
		if err := config.SetRedisObject(vehicleTypeListCacheKey(userId), &results, 0); err != nil {
			return nil, err
		}
	}
	return results, nil
}
