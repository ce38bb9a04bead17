package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func CreateClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewClient
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		client, err := models.CreateClient(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/client.go", "CreateClientHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, client)
	}
}

func UpdateClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewClient
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		client, err := models.UpdateClient(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers/client.go", "UpdateClientHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

func DeleteClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		client, err := models.DeleteClient(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/client.go", "DeleteClientHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

func GetClientHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		client, err := models.GetClient(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/client.go", "GetClientHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

func GetClientsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clients, err := models.GetClients(c.Request.Context(), queryString(c, "name"))
		if err != nil {
			respondError(c, "handlers/client.go", "GetClientsHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, clients)
	}
}

func GetClientStatementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		statement, err := models.GetClientStatement(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/client.go", "GetClientStatementHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, statement)
	}
}
