package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type ChapaClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewChapaClient(cfg Config) *ChapaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &ChapaClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *ChapaClient) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}
	c.setHeaders(httpReq)

	status, raw, err := c.do(httpReq)
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}

	var res struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &GatewayError{Op: "initialize", StatusCode: status, Body: string(raw), Err: fmt.Errorf("decode response: %w", err)}
	}
	if status != http.StatusOK || res.Status != "success" {
		return nil, &GatewayError{Op: "initialize", StatusCode: status, Body: string(raw)}
	}
	if res.Data.CheckoutURL == "" {
		return nil, &GatewayError{Op: "initialize", StatusCode: status, Body: string(raw), Err: fmt.Errorf("missing checkout_url")}
	}

	return &InitializeResponse{CheckoutURL: res.Data.CheckoutURL}, nil
}

func (c *ChapaClient) VerifyTransaction(ctx context.Context, txRef string) (*VerifyResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/transaction/verify/"+url.PathEscape(txRef), nil)
	if err != nil {
		return nil, &GatewayError{Op: "verify", Err: err}
	}
	c.setHeaders(httpReq)

	status, raw, err := c.do(httpReq)
	if err != nil {
		return nil, &GatewayError{Op: "verify", Err: err}
	}

	var res struct {
		Status string `json:"status"`
		Data   struct {
			Status    string          `json:"status"`
			Reference string          `json:"reference"`
			TxRef     string          `json:"tx_ref"`
			Amount    json.RawMessage `json:"amount"`
			Currency  string          `json:"currency"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &GatewayError{Op: "verify", StatusCode: status, Body: string(raw), Err: fmt.Errorf("decode response: %w", err)}
	}
	if status != http.StatusOK || res.Status != "success" {
		return nil, &GatewayError{Op: "verify", StatusCode: status, Body: string(raw)}
	}

	ref := res.Data.Reference
	if ref == "" {
		ref = res.Data.TxRef
	}

	return &VerifyResponse{
		Status:     VerifiedStatus(strings.ToLower(strings.TrimSpace(res.Data.Status))),
		GatewayRef: ref,
		Amount:     strings.Trim(string(res.Data.Amount), `"`),
		Currency:   res.Data.Currency,
	}, nil
}

func (c *ChapaClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *ChapaClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}
