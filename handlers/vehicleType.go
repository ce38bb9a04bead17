package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func CreateVehicleTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVehicleType
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		vehicleType, err := models.CreateVehicleType(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/vehicleType.go", "CreateVehicleTypeHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, vehicleType)
	}
}

func UpdateVehicleTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewVehicleType
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		vehicleType, err := models.UpdateVehicleType(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers/vehicleType.go", "UpdateVehicleTypeHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, vehicleType)
	}
}

func DeleteVehicleTypeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		vehicleType, err := models.DeleteVehicleType(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/vehicleType.go", "DeleteVehicleTypeHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, vehicleType)
	}
}

func GetVehicleTypesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicleTypes, err := models.GetVehicleTypes(c.Request.Context())
		if err != nil {
			respondError(c, "handlers/vehicleType.go", "GetVehicleTypesHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, vehicleTypes)
	}
}
