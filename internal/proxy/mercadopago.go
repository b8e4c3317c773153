package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/casaguide/concierge/pkg/config"
)

type MercadoPagoClient struct {
	accessToken string
	baseURL     string
	client      *http.Client
}

func NewMercadoPagoClient(cfg config.MercadoPagoConfig) *MercadoPagoClient {
	return &MercadoPagoClient{
		accessToken: cfg.AccessToken,
		baseURL:     cfg.BaseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type PaymentReq struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	Payer             Payer   `json:"payer"`
}

type Payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type PaymentRes struct {
	ID           int64  `json:"id"`
	Status       string `json:"status"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url"`
}

type mpPaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             Payer   `json:"payer"`
}

type mpPaymentResponse struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePIXPayment creates a PIX payment and returns the QR payload the
// guest scans to pay.
func (c *MercadoPagoClient) CreatePIXPayment(ctx context.Context, in *PaymentReq) (*PaymentRes, error) {
	if c.accessToken == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(mpPaymentRequest{
		TransactionAmount: in.TransactionAmount,
		Description:       in.Description,
		PaymentMethodID:   "pix",
		Payer:             in.Payer,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	// Mercado Pago rejects payment creation without an idempotency key.
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mercado pago request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("mercado pago returned %d: %s", resp.StatusCode, raw)
	}

	var out mpPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &PaymentRes{
		ID:           out.ID,
		Status:       out.Status,
		QRCode:       out.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: out.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:    out.PointOfInteraction.TransactionData.TicketURL,
	}, nil
}
