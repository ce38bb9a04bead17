package workflow

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/sirupsen/logrus"
)

// OverdueSweeper periodically flips SENT/PARTIAL invoices whose due date has
// passed to OVERDUE. The sweep is a single conditional UPDATE, so running it
// twice is harmless; the Redis lock only avoids redundant work when several
// instances are deployed.
type OverdueSweeper struct {
	Logger       *logrus.Logger
	PollInterval time.Duration
	LockTTL      time.Duration
}

const overdueSweepLockKey = "lock:overdue-sweep"

func NewOverdueSweeper(logger *logrus.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		Logger:       logger,
		PollInterval: time.Hour,
		LockTTL:      time.Minute,
	}
}

func (s *OverdueSweeper) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.sweepOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.PollInterval):
		}
	}
}

func (s *OverdueSweeper) sweepOnce(ctx context.Context) {
	// Best-effort cross-instance lock. Redis being down must not stop the
	// sweep; the UPDATE itself is idempotent.
	var lock *redislock.Lock
	if locker := config.GetRedisLock(); locker != nil {
		var err error
		lock, err = locker.Obtain(ctx, overdueSweepLockKey, s.LockTTL, nil)
		if err == redislock.ErrNotObtained {
			return
		}
		if err != nil {
			s.Logger.WithFields(logrus.Fields{
				"field": "OverdueSweeper",
			}).Warn("error obtaining redis lock; proceeding without lock: " + err.Error())
			lock = nil
		}
	}
	defer func() {
		if lock == nil {
			return
		}
		if releaseErr := lock.Release(ctx); releaseErr != nil && releaseErr != redislock.ErrLockNotHeld {
			s.Logger.WithFields(logrus.Fields{
				"field": "OverdueSweeper",
			}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}()

	updated, err := models.MarkOverdueInvoices(ctx, time.Now())
	if err != nil {
		config.LogError(s.Logger, "workflow/overdueWorkflow.go", "sweepOnce", "MarkOverdueInvoices", nil, err)
		return
	}
	if updated > 0 {
		s.Logger.WithFields(logrus.Fields{
			"field":   "OverdueSweeper",
			"updated": updated,
		}).Info("marked invoices overdue")
	}
}
