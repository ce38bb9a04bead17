package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func RecordPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPayment
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		payment, err := models.RecordPayment(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/payment.go", "RecordPaymentHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}

func GetInvoicePaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		payments, err := models.GetPaymentsForInvoice(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/payment.go", "GetInvoicePaymentsHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

func GetPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := models.GetPayments(c.Request.Context(), queryInt(c, "client_id"))
		if err != nil {
			respondError(c, "handlers/payment.go", "GetPaymentsHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}
