package gateway

import "fmt"

type InitializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
	Title       string `json:"customization[title],omitempty"`
	Description string `json:"customization[description],omitempty"`
}

type InitializeResponse struct {
	CheckoutURL string
}

// VerifiedStatus is what the provider's verify endpoint asserts about a
// transaction. Values outside the listed constants are possible and must be
// treated as "still pending" by callers.
type VerifiedStatus string

const (
	VerifiedSuccess   VerifiedStatus = "success"
	VerifiedFailed    VerifiedStatus = "failed"
	VerifiedPending   VerifiedStatus = "pending"
	VerifiedCancelled VerifiedStatus = "cancelled"
	VerifiedExpired   VerifiedStatus = "expired"
)

type VerifyResponse struct {
	Status     VerifiedStatus
	GatewayRef string
	Amount     string
	Currency   string
}

// GatewayError carries the raw provider response for diagnostics. A zero
// StatusCode means the HTTP exchange itself failed (network error, timeout).
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chapa %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("chapa %s: http=%d body=%s", e.Op, e.StatusCode, e.Body)
}

func (e *GatewayError) Unwrap() error { return e.Err }
