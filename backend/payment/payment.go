// Package payment verifies checkout transactions with the payment gateway.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var ErrVerificationFailed = errors.New("payment verification failed")

const StatusSuccess = "success"

type Verification struct {
	Reference string
	Status    string
	Amount    int64 // minor currency units
	Currency  string
	PaidAt    time.Time
}

func (v Verification) Succeeded() bool { return v.Status == StatusSuccess }

type Client struct {
	http *resty.Client
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string    `json:"reference"`
		Status    string    `json:"status"`
		Amount    int64     `json:"amount"`
		Currency  string    `json:"currency"`
		PaidAt    time.Time `json:"paid_at"`
	} `json:"data"`
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetAuthToken(secretKey).
			SetTimeout(15 * time.Second).
			SetRetryCount(2),
	}
}

// NewReference returns a fresh checkout reference.
func NewReference() string {
	return "chk_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Verify asks the gateway for the authoritative state of a transaction.
func (c *Client) Verify(ctx context.Context, reference string) (Verification, error) {
	if reference == "" {
		return Verification{}, fmt.Errorf("%w: empty reference", ErrVerificationFailed)
	}

	var out verifyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/transaction/verify/" + url.PathEscape(reference))
	if err != nil {
		return Verification{}, fmt.Errorf("verify %s: %w", reference, err)
	}
	if resp.IsError() || !out.Status {
		return Verification{}, fmt.Errorf("%w: %s: status %d: %s", ErrVerificationFailed, reference, resp.StatusCode(), out.Message)
	}

	return Verification{
		Reference: out.Data.Reference,
		Status:    out.Data.Status,
		Amount:    out.Data.Amount,
		Currency:  out.Data.Currency,
		PaidAt:    out.Data.PaidAt,
	}, nil
}
