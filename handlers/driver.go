package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func CreateDriverHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDriver
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		driver, err := models.CreateDriver(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/driver.go", "CreateDriverHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, driver)
	}
}

func UpdateDriverHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewDriver
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		driver, err := models.UpdateDriver(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers/driver.go", "UpdateDriverHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, driver)
	}
}

func DeleteDriverHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		driver, err := models.DeleteDriver(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/driver.go", "DeleteDriverHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, driver)
	}
}

func GetDriverHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		driver, err := models.GetDriver(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/driver.go", "GetDriverHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, driver)
	}
}

func GetDriversHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *models.DriverStatus
		if v := c.Query("status"); v != "" {
			s := models.DriverStatus(v)
			status = &s
		}
		drivers, err := models.GetDrivers(c.Request.Context(), queryString(c, "name"), status)
		if err != nil {
			respondError(c, "handlers/driver.go", "GetDriversHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, drivers)
	}
}
