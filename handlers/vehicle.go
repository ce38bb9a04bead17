package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func CreateVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVehicle
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		vehicle, err := models.CreateVehicle(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/vehicle.go", "CreateVehicleHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, vehicle)
	}
}

func UpdateVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewVehicle
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		vehicle, err := models.UpdateVehicle(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers/vehicle.go", "UpdateVehicleHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, vehicle)
	}
}

func DeleteVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		vehicle, err := models.DeleteVehicle(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/vehicle.go", "DeleteVehicleHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, vehicle)
	}
}

func GetVehicleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		vehicle, err := models.GetVehicle(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/vehicle.go", "GetVehicleHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, vehicle)
	}
}

func GetVehiclesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *models.VehicleStatus
		if v := c.Query("status"); v != "" {
			s := models.VehicleStatus(v)
			status = &s
		}
		vehicles, err := models.GetVehicles(c.Request.Context(), queryString(c, "registration_no"), status)
		if err != nil {
			respondError(c, "handlers/vehicle.go", "GetVehiclesHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, vehicles)
	}
}
