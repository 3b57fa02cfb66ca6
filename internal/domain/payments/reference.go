package payments

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewTransactionReference builds the gateway-facing tx_ref for a payment
// attempt: tx_<bookingRef>_<8 hex chars>. The random suffix makes every
// attempt for the same booking distinct; uniqueness is still enforced by the
// database, never assumed.
func NewTransactionReference(bookingRef string) string {
	id := uuid.New()
	return fmt.Sprintf("tx_%s_%s", bookingRef, hex.EncodeToString(id[:])[:8])
}
