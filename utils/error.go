package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Domain error taxonomy for the billing core. Handlers map these to HTTP
// status codes; model code returns them (optionally wrapped with %w).
var (
	ErrorUnauthorized              = errors.New("unauthorized")
	ErrorInvalidInput              = errors.New("invalid input")
	ErrorNoUnbilledJobs            = errors.New("no unbilled completed jobs found for the given period")
	ErrorInvalidAmount             = errors.New("payment amount must be greater than zero")
	ErrorExceedsBalance            = errors.New("payment amount exceeds the invoice balance")
	ErrorConcurrentClaimConflict   = errors.New("one or more jobs were claimed by another invoice")
	ErrorConcurrentBalanceConflict = errors.New("invoice balance changed concurrently")
	ErrorNumberGenerationExhausted = errors.New("could not generate a unique invoice number")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
