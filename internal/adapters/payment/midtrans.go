package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"eventhub/internal/domain"
)

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type coreAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
	CancelTransaction(orderID string) (*coreapi.CancelResponse, *midtrans.Error)
}

type midtransGateway struct {
	snap snapAPI
	core coreAPI
}

// NewMidtransGateway returns a PaymentGateway that opens Snap payment pages and polls the Core API.
func NewMidtransGateway(serverKey string, production bool) domain.PaymentGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var s snap.Client
	s.New(serverKey, env)
	var c coreapi.Client
	c.New(serverKey, env)
	return &midtransGateway{snap: &s, core: &c}
}

func (g *midtransGateway) CreateBill(ctx context.Context, req domain.BillRequest) (*domain.Bill, error) {
	amount := req.Amount.Round(0).IntPart()
	if amount <= 0 {
		return nil, fmt.Errorf("midtrans: invalid amount %s", req.Amount)
	}
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.BillID,
			GrossAmt: amount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.BillID,
			Price: amount,
			Qty:   1,
			Name:  truncate(req.Comment, 50),
		}},
		Expiry: &snap.ExpiryDetails{
			Unit:     "minute",
			Duration: int64(req.Lifetime / time.Minute),
		},
	}
	resp, err := callWithContext(ctx, func() (*snap.Response, *midtrans.Error) {
		return g.snap.CreateTransaction(snapReq)
	})
	if err != nil {
		return nil, err
	}
	return &domain.Bill{BillID: req.BillID, PayURL: resp.RedirectURL}, nil
}

func (g *midtransGateway) CheckStatus(ctx context.Context, billID string) (domain.PaymentStatus, error) {
	resp, err := callWithContext(ctx, func() (*coreapi.TransactionStatusResponse, *midtrans.Error) {
		return g.core.CheckTransaction(billID)
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode == "404" {
		return "", fmt.Errorf("midtrans transaction: %w", domain.ErrNotFound)
	}
	return midtransStatus(resp.TransactionStatus)
}

func (g *midtransGateway) CancelBill(ctx context.Context, billID string) error {
	_, err := callWithContext(ctx, func() (*coreapi.CancelResponse, *midtrans.Error) {
		return g.core.CancelTransaction(billID)
	})
	return err
}

// midtransStatus maps a Midtrans transaction_status onto the bill states.
func midtransStatus(v string) (domain.PaymentStatus, error) {
	switch strings.ToLower(v) {
	case "pending":
		return domain.PaymentWaiting, nil
	case "settlement", "capture":
		return domain.PaymentPaid, nil
	case "expire":
		return domain.PaymentExpired, nil
	case "cancel", "deny", "failure":
		return domain.PaymentRejected, nil
	}
	return "", fmt.Errorf("unknown midtrans transaction status %q", v)
}

// callWithContext runs a midtrans-go call, which takes no context, and stops waiting when ctx ends.
func callWithContext[T any](ctx context.Context, call func() (*T, *midtrans.Error)) (*T, error) {
	type result struct {
		resp *T
		err  *midtrans.Error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := call()
		ch <- result{resp, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if r.err.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("midtrans: %w", domain.ErrNotFound)
			}
			return nil, fmt.Errorf("midtrans: %s", r.err.Error())
		}
		return r.resp, nil
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
