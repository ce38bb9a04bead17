package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/gin-gonic/gin"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", utils.ErrorUnauthorized, http.StatusUnauthorized},
		{"invalid input", utils.ErrorInvalidInput, http.StatusBadRequest},
		{"invalid amount", utils.ErrorInvalidAmount, http.StatusBadRequest},
		{"exceeds balance", utils.ErrorExceedsBalance, http.StatusBadRequest},
		{"record not found", utils.ErrorRecordNotFound, http.StatusNotFound},
		{"no unbilled jobs", utils.ErrorNoUnbilledJobs, http.StatusNotFound},
		{"claim conflict", utils.ErrorConcurrentClaimConflict, http.StatusConflict},
		{"balance conflict", utils.ErrorConcurrentBalanceConflict, http.StatusConflict},
		{"wrapped claim conflict", fmt.Errorf("generate: %w", utils.ErrorConcurrentClaimConflict), http.StatusConflict},
		{"wrapped balance conflict", fmt.Errorf("record payment: %w", utils.ErrorConcurrentBalanceConflict), http.StatusConflict},
		{"number generation exhausted", utils.ErrorNumberGenerationExhausted, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// List endpoints reject unknown status values before touching the database.
func TestListHandlersRejectUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/invoices", GetInvoicesHandler())
	r.GET("/jobs", GetJobsHandler())

	for _, path := range []string{"/invoices?status=BOGUS", "/jobs?status=shipped"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
	}
}
