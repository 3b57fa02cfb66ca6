package main

import (
	"testing"
	"time"

	"voyago/internal/domain/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExpireSweep_FailsStalePendingOnly(t *testing.T) {
	env := newTestEnv(t)
	env.app.config.payments.pendingTTL = 24 * time.Hour

	stale := env.payments.seed(&payments.Payment{
		BookingID: 1,
		TxRef:     "tx_BK1_aaaaaaaa",
		Status:    payments.StatusPending,
	})
	fresh := env.payments.seed(&payments.Payment{
		BookingID: 2,
		TxRef:     "tx_BK2_bbbbbbbb",
		Status:    payments.StatusPending,
	})
	done := env.payments.seed(&payments.Payment{
		BookingID: 3,
		TxRef:     "tx_BK3_cccccccc",
		Status:    payments.StatusCompleted,
	})

	// Backdate the stale and completed rows past the TTL.
	env.payments.mu.Lock()
	env.payments.rows[stale.ID].CreatedAt = time.Now().Add(-48 * time.Hour)
	env.payments.rows[done.ID].CreatedAt = time.Now().Add(-48 * time.Hour)
	env.payments.rows[fresh.ID].CreatedAt = time.Now().Add(-time.Hour)
	env.payments.mu.Unlock()

	env.app.runExpireSweep()

	get := func(id int64) payments.Status {
		p, err := env.payments.GetByID(t.Context(), id)
		require.NoError(t, err)
		return p.Status
	}
	assert.Equal(t, payments.StatusFailed, get(stale.ID))
	assert.Equal(t, payments.StatusPending, get(fresh.ID))
	assert.Equal(t, payments.StatusCompleted, get(done.ID))
}
