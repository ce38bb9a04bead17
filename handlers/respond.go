package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/gin-gonic/gin"
)

// statusForError maps the domain error taxonomy onto HTTP status codes.
// Anything unrecognized is a 500 and gets logged with its correlation id.
func statusForError(err error) int {
	switch {
	case errors.Is(err, utils.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, utils.ErrorInvalidInput),
		errors.Is(err, utils.ErrorInvalidAmount),
		errors.Is(err, utils.ErrorExceedsBalance):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrorRecordNotFound),
		errors.Is(err, utils.ErrorNoUnbilledJobs):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrorConcurrentClaimConflict),
		errors.Is(err, utils.ErrorConcurrentBalanceConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, module string, funcName string, data interface{}, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger := config.GetLogger()
		config.LogError(logger, module, funcName, "request failed", data, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) *int {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func queryString(c *gin.Context, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

func queryDate(c *gin.Context, key string) *time.Time {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &d
}
