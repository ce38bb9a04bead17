package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func CreateFuelEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFuelEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		entry, err := models.CreateFuelEntry(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/fuelEntry.go", "CreateFuelEntryHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func UpdateFuelEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewFuelEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		entry, err := models.UpdateFuelEntry(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers/fuelEntry.go", "UpdateFuelEntryHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func DeleteFuelEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		entry, err := models.DeleteFuelEntry(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/fuelEntry.go", "DeleteFuelEntryHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func GetFuelEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.GetFuelEntries(c.Request.Context(),
			queryInt(c, "vehicle_id"), queryDate(c, "start_date"), queryDate(c, "end_date"))
		if err != nil {
			respondError(c, "handlers/fuelEntry.go", "GetFuelEntriesHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
