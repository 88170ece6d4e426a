package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"eventhub/internal/domain"
)

// DefaultQiwiBaseURL is the QIWI P2P bills API root.
const DefaultQiwiBaseURL = "https://api.qiwi.com/partner/bill/v1/bills"

const qiwiCurrency = "RUB"

type qiwiAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type qiwiBillRequest struct {
	Amount             qiwiAmount `json:"amount"`
	ExpirationDateTime string     `json:"expirationDateTime"`
	Comment            string     `json:"comment,omitempty"`
}

type qiwiBillResponse struct {
	BillID string `json:"billId"`
	PayURL string `json:"payUrl"`
	Status struct {
		Value string `json:"value"`
	} `json:"status"`
}

type qiwiGateway struct {
	client     *http.Client
	baseURL    string
	privateKey string
	now        func() time.Time
}

// NewQiwiGateway returns a PaymentGateway backed by QIWI P2P bills.
func NewQiwiGateway(client *http.Client, baseURL, privateKey string) domain.PaymentGateway {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultQiwiBaseURL
	}
	return &qiwiGateway{client: client, baseURL: baseURL, privateKey: privateKey, now: time.Now}
}

func (g *qiwiGateway) CreateBill(ctx context.Context, req domain.BillRequest) (*domain.Bill, error) {
	body := qiwiBillRequest{
		Amount: qiwiAmount{
			Currency: qiwiCurrency,
			Value:    req.Amount.Round(2).StringFixed(2),
		},
		ExpirationDateTime: g.now().Add(req.Lifetime).Format(time.RFC3339),
		Comment:            req.Comment,
	}
	var resp qiwiBillResponse
	if err := g.do(ctx, http.MethodPut, g.billURL(req.BillID), body, &resp); err != nil {
		return nil, err
	}
	return &domain.Bill{BillID: req.BillID, PayURL: resp.PayURL}, nil
}

func (g *qiwiGateway) CheckStatus(ctx context.Context, billID string) (domain.PaymentStatus, error) {
	var resp qiwiBillResponse
	if err := g.do(ctx, http.MethodGet, g.billURL(billID), nil, &resp); err != nil {
		return "", err
	}
	return qiwiStatus(resp.Status.Value)
}

func (g *qiwiGateway) CancelBill(ctx context.Context, billID string) error {
	return g.do(ctx, http.MethodPost, g.billURL(billID)+"/reject", nil, nil)
}

func (g *qiwiGateway) billURL(billID string) string {
	return g.baseURL + "/" + url.PathEscape(billID)
}

// qiwiStatus maps QIWI bill statuses, which share names with the local ones.
func qiwiStatus(v string) (domain.PaymentStatus, error) {
	switch s := domain.PaymentStatus(v); s {
	case domain.PaymentWaiting, domain.PaymentPaid, domain.PaymentExpired, domain.PaymentRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown qiwi bill status %q", v)
}

func (g *qiwiGateway) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode qiwi request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.privateKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call qiwi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("qiwi bill: %w", domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("qiwi api returned status: %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode qiwi response: %w", err)
	}
	return nil
}
