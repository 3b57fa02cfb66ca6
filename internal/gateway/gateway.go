package gateway

import (
	"context"
	"time"
)

// Client is the outbound contract with the payment provider. Both calls are
// single synchronous HTTP requests; failures surface as *GatewayError with no
// retries, so callers decide what a failure means for the payment record.
type Client interface {
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	VerifyTransaction(ctx context.Context, txRef string) (*VerifyResponse, error)
}

// Config carries everything the client needs; nothing is read from globals.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

const (
	DefaultBaseURL = "https://api.chapa.co/v1"
	DefaultTimeout = 10 * time.Second
)
