package models

import "testing"

func TestInvoiceStatusValid(t *testing.T) {
	for _, s := range []InvoiceStatus{
		InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPending, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled,
	} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []InvoiceStatus{"", "paid", "SETTLED", "PAID "} {
		if s.Valid() {
			t.Errorf("%q should be invalid", string(s))
		}
	}
}

func TestJobStatusValid(t *testing.T) {
	for _, s := range []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []JobStatus{"", "DONE", "completed"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", string(s))
		}
	}
}
