package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func GenerateInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewInvoice
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		invoice, err := models.GenerateInvoice(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/invoice.go", "GenerateInvoiceHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	}
}

func GetInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		invoice, err := models.GetInvoice(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/invoice.go", "GetInvoiceHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	}
}

func GetInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.InvoiceFilter{
			ClientId:  queryInt(c, "client_id"),
			StartDate: queryDate(c, "start_date"),
			EndDate:   queryDate(c, "end_date"),
		}
		if v := c.Query("status"); v != "" {
			s := models.InvoiceStatus(v)
			if !s.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filter.Status = &s
		}
		invoices, err := models.GetInvoices(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "handlers/invoice.go", "GetInvoicesHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}
