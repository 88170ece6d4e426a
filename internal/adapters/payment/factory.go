package payment

import (
	"fmt"
	"net/http"
	"time"

	"eventhub/internal/domain"
)

// Config selects and configures the payment provider.
type Config struct {
	Provider          string
	QiwiPrivateKey    string
	QiwiBaseURL       string
	MidtransServerKey string
	MidtransProd      bool
	Timeout           time.Duration
}

// NewGatewayFactory returns a factory for the configured provider. The factory reports
// domain.ErrPaymentUnavailable while the provider credential is empty.
func NewGatewayFactory(cfg Config) domain.PaymentGatewayFactory {
	client := &http.Client{Timeout: cfg.Timeout}
	return func() (domain.PaymentGateway, error) {
		switch cfg.Provider {
		case "qiwi", "":
			if cfg.QiwiPrivateKey == "" {
				return nil, domain.ErrPaymentUnavailable
			}
			return NewQiwiGateway(client, cfg.QiwiBaseURL, cfg.QiwiPrivateKey), nil
		case "midtrans":
			if cfg.MidtransServerKey == "" {
				return nil, domain.ErrPaymentUnavailable
			}
			return NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProd), nil
		}
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrPaymentUnavailable, cfg.Provider)
	}
}
