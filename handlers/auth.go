package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := models.Register(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/auth.go", "RegisterHandler", input.Email, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		})
	}
}

func LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, "handlers/auth.go", "LoginHandler", req.Email, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func RefreshHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		info, err := models.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			respondError(c, "handlers/auth.go", "RefreshHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		ok, err := models.Logout(c.Request.Context(), req.RefreshToken)
		if err != nil {
			respondError(c, "handlers/auth.go", "LogoutHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})
	}
}
