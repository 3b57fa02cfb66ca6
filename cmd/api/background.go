package main

import (
	"context"
	"time"
)

// expireStalePayments periodically fails PENDING payments that outlived the
// configured TTL, so abandoned checkouts don't sit in limbo forever.
func (app *application) expireStalePayments() {
	go func() {
		ticker := time.NewTicker(app.config.payments.sweepEvery)
		defer ticker.Stop()

		// Run once immediately
		app.runExpireSweep()

		for range ticker.C {
			app.runExpireSweep()
		}
	}()
}

func (app *application) runExpireSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-app.config.payments.pendingTTL)
	n, err := app.store.Payments.ExpirePending(ctx, cutoff)
	if err != nil {
		app.logger.Errorf("Error expiring stale pending payments: %v", err)
		return
	}
	if n > 0 {
		app.logger.Infof("Expired %d stale pending payment(s) older than %s", n, cutoff.Format(time.RFC1123))
	}
}
