package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
)

const (
	DefaultSquareBaseURL = "https://connect.squareup.com"
	squareAPIVersion     = "2024-10-17"
)

// SquareProvider reads payments from the Square Payments API.
type SquareProvider struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

func NewSquareProvider(accessToken, baseURL string) *SquareProvider {
	if baseURL == "" {
		baseURL = DefaultSquareBaseURL
	}
	return &SquareProvider{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squarePaymentResponse struct {
	Payment struct {
		ID          string      `json:"id"`
		Status      string      `json:"status"`
		AmountMoney squareMoney `json:"amount_money"`
	} `json:"payment"`
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (s *SquareProvider) Name() string { return models.PaymentProviderSquare }

// GetPayment fetches /v2/payments/{id}.
func (s *SquareProvider) GetPayment(ctx context.Context, paymentID string) (models.ProviderPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v2/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return models.ProviderPayment{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Square-Version", squareAPIVersion)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.ProviderPayment{}, fmt.Errorf("square GetPayment: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ProviderPayment{}, fmt.Errorf("read response: %w", err)
	}

	var out squarePaymentResponse
	if resp.StatusCode >= 400 {
		msg := string(body)
		if json.Unmarshal(body, &out) == nil && len(out.Errors) > 0 {
			msg = out.Errors[0].Code + ": " + out.Errors[0].Detail
		}
		return models.ProviderPayment{}, fmt.Errorf("square GetPayment: %w", &APIError{StatusCode: resp.StatusCode, Body: msg})
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return models.ProviderPayment{}, fmt.Errorf("unmarshal response: %w", err)
	}

	return models.ProviderPayment{
		Provider:  models.PaymentProviderSquare,
		Reference: out.Payment.ID,
		Status:    out.Payment.Status,
		Amount:    out.Payment.AmountMoney.Amount,
		Currency:  strings.ToUpper(out.Payment.AmountMoney.Currency),
		Completed: out.Payment.Status == "COMPLETED",
	}, nil
}
