package models

import (
	"context"
	"errors"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/shopspring/decimal"
)

// Job is the billable unit of work. A job belongs to at most one invoice:
// invoice_id stays NULL until the invoice generator claims it, and is
// immutable afterwards.
type Job struct {
	ID          int             `gorm:"primary_key" json:"id"`
	UserId      int             `gorm:"index;not null" json:"user_id"`
	ClientId    int             `gorm:"index;not null" json:"client_id" binding:"required"`
	Client      *Client         `gorm:"foreignKey:ClientId" json:"client,omitempty"`
	DriverId    int             `gorm:"index;not null" json:"driver_id" binding:"required"`
	Driver      *Driver         `gorm:"foreignKey:DriverId" json:"driver,omitempty"`
	VehicleId   int             `gorm:"index;not null" json:"vehicle_id" binding:"required"`
	Vehicle     *Vehicle        `gorm:"foreignKey:VehicleId" json:"vehicle,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount" binding:"required"`
	Status      JobStatus       `gorm:"type:enum('PENDING','IN_PROGRESS','COMPLETED','CANCELLED');default:PENDING" json:"status"`
	InvoiceId   *int            `gorm:"index;default:null" json:"invoice_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewJob struct {
	ClientId    int             `json:"client_id" binding:"required"`
	DriverId    int             `json:"driver_id" binding:"required"`
	VehicleId   int             `json:"vehicle_id" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Status      JobStatus       `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

type JobFilter struct {
	ClientId  *int
	Status    *JobStatus
	StartDate *time.Time
	EndDate   *time.Time
	Unbilled  bool
}

func (input *NewJob) validate(ctx context.Context, userId int) error {
	if err := utils.ValidateResourceId[Client](ctx, userId, input.ClientId); err != nil {
		return errors.New("client not found")
	}
	if err := utils.ValidateResourceId[Driver](ctx, userId, input.DriverId); err != nil {
		return errors.New("driver not found")
	}
	if err := utils.ValidateResourceId[Vehicle](ctx, userId, input.VehicleId); err != nil {
		return errors.New("vehicle not found")
	}
	if !input.Amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

func CreateJob(ctx context.Context, input *NewJob) (*Job, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = JobStatusPending
	}

	job := Job{
		UserId:      userId,
		ClientId:    input.ClientId,
		DriverId:    input.DriverId,
		VehicleId:   input.VehicleId,
		Date:        input.Date,
		Description: input.Description,
		Amount:      utils.Round2(input.Amount),
		Status:      status,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func UpdateJob(ctx context.Context, id int, input *NewJob) (*Job, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	job, err := utils.FetchModel[Job](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	// invoiced jobs are frozen
	if job.InvoiceId != nil {
		return nil, errors.New("job has been invoiced and can no longer be changed")
	}

	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	job.ClientId = input.ClientId
	job.DriverId = input.DriverId
	job.VehicleId = input.VehicleId
	job.Date = input.Date
	job.Description = input.Description
	job.Amount = utils.Round2(input.Amount)
	if input.Status != "" {
		job.Status = input.Status
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func DeleteJob(ctx context.Context, id int) (*Job, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	job, err := utils.FetchModel[Job](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if job.InvoiceId != nil {
		return nil, errors.New("job has been invoiced and can no longer be deleted")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func GetJob(ctx context.Context, id int) (*Job, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}
	return utils.FetchModel[Job](ctx, userId, id, "Client", "Driver", "Vehicle")
}

func GetJobs(ctx context.Context, filter *JobFilter) ([]*Job, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthorized
	}

	db := config.GetDB()
	var results []*Job

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if filter != nil {
		if filter.ClientId != nil && *filter.ClientId > 0 {
			dbCtx = dbCtx.Where("client_id = ?", *filter.ClientId)
		}
		if filter.Status != nil && *filter.Status != "" {
			dbCtx = dbCtx.Where("status = ?", *filter.Status)
		}
		if filter.StartDate != nil && filter.EndDate != nil {
			dbCtx = dbCtx.Where("date BETWEEN ? AND ?", *filter.StartDate, *filter.EndDate)
		}
		if filter.Unbilled {
			dbCtx = dbCtx.Where("invoice_id IS NULL AND status = ?", JobStatusCompleted)
		}
	}
	err := dbCtx.Preload("Client").Preload("Driver").Preload("Vehicle").
		Order("date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
