package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
)

const DefaultShippoBaseURL = "https://api.goshippo.com"

// ShippoProvider implements ShippingProvider using the Shippo API.
type ShippoProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewShippoProvider creates a new ShippoProvider. An empty baseURL targets
// the production API.
func NewShippoProvider(apiKey, baseURL string) *ShippoProvider {
	if baseURL == "" {
		baseURL = DefaultShippoBaseURL
	}
	return &ShippoProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- Shippo API request/response structs ----

type shippoAddress struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type shippoParcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type shippoShipmentRequest struct {
	AddressFrom shippoAddress  `json:"address_from"`
	AddressTo   shippoAddress  `json:"address_to"`
	Parcels     []shippoParcel `json:"parcels"`
	Async       bool           `json:"async"`
}

type shippoRate struct {
	ObjectID     string `json:"object_id"`
	Provider     string `json:"provider"`
	ServiceLevel struct {
		Name  string `json:"name"`
		Token string `json:"token"`
	} `json:"servicelevel"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	EstimatedDays int    `json:"estimated_days"`
}

type shippoShipmentResponse struct {
	Rates []shippoRate `json:"rates"`
}

type shippoTransactionRequest struct {
	Rate          string `json:"rate"`
	Async         bool   `json:"async"`
	LabelFileType string `json:"label_file_type"`
}

type shippoTransactionResponse struct {
	ObjectID            string `json:"object_id"`
	Status              string `json:"status"`
	TrackingNumber      string `json:"tracking_number"`
	LabelURL            string `json:"label_url"`
	TrackingURLProvider string `json:"tracking_url_provider"`
	Messages            []struct {
		Text string `json:"text"`
	} `json:"messages"`
}

type shippoLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

func (l shippoLocation) String() string {
	var parts []string
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type shippoTrackingStatus struct {
	Status        string          `json:"status"`
	SubStatus     json.RawMessage `json:"substatus"`
	StatusDetails string          `json:"status_details"`
	StatusDate    string          `json:"status_date"`
	Location      shippoLocation  `json:"location"`
}

type shippoTrackResponse struct {
	TrackingNumber  string                 `json:"tracking_number"`
	Carrier         string                 `json:"carrier"`
	ETA             string                 `json:"eta"`
	TrackingStatus  shippoTrackingStatus   `json:"tracking_status"`
	TrackingHistory []shippoTrackingStatus `json:"tracking_history"`
}

// ---- ShippingProvider implementation ----

// GetRates creates a Shippo shipment and returns available rates.
func (s *ShippoProvider) GetRates(ctx context.Context, parcel models.Parcel, origin, destination models.Address) ([]models.ShippingRate, error) {
	reqBody := shippoShipmentRequest{
		AddressFrom: toShippoAddress(origin),
		AddressTo:   toShippoAddress(destination),
		Parcels:     []shippoParcel{toShippoParcel(parcel)},
		Async:       false,
	}

	var resp shippoShipmentResponse
	if err := s.doRequest(ctx, http.MethodPost, "/shipments/", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("shippo GetRates: %w", err)
	}

	rates := make([]models.ShippingRate, 0, len(resp.Rates))
	for _, r := range resp.Rates {
		amount, err := strconv.ParseFloat(r.Amount, 64)
		if err != nil {
			continue
		}
		rates = append(rates, models.ShippingRate{
			Carrier:       r.Provider,
			ServiceLevel:  r.ServiceLevel.Name,
			Amount:        amount,
			Currency:      r.Currency,
			EstimatedDays: r.EstimatedDays,
			RateID:        r.ObjectID,
		})
	}

	return rates, nil
}

// PurchaseLabel buys the selected Shippo rate and returns the label.
func (s *ShippoProvider) PurchaseLabel(ctx context.Context, rateID string) (models.PurchasedLabel, error) {
	txReq := shippoTransactionRequest{
		Rate:          rateID,
		Async:         false,
		LabelFileType: "PDF",
	}

	var resp shippoTransactionResponse
	if err := s.doRequest(ctx, http.MethodPost, "/transactions/", txReq, &resp); err != nil {
		return models.PurchasedLabel{}, fmt.Errorf("shippo PurchaseLabel: %w", err)
	}

	if resp.Status != "SUCCESS" {
		msg := "label purchase failed"
		if len(resp.Messages) > 0 {
			msg = resp.Messages[0].Text
		}
		return models.PurchasedLabel{}, fmt.Errorf("shippo PurchaseLabel: %s", msg)
	}

	return models.PurchasedLabel{
		TrackingNumber: resp.TrackingNumber,
		LabelURL:       resp.LabelURL,
		TrackingURL:    resp.TrackingURLProvider,
		TransactionID:  resp.ObjectID,
	}, nil
}

// TrackShipment retrieves the current tracking status from Shippo.
func (s *ShippoProvider) TrackShipment(ctx context.Context, carrier, trackingNumber string) (models.TrackingStatus, error) {
	path := fmt.Sprintf("/tracks/%s/%s", url.PathEscape(strings.ToLower(carrier)), url.PathEscape(trackingNumber))

	var resp shippoTrackResponse
	if err := s.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.TrackingStatus{}, fmt.Errorf("shippo TrackShipment: %w", err)
	}

	status := models.TrackingStatus{
		TrackingNumber: resp.TrackingNumber,
		Carrier:        resp.Carrier,
		Status:         resp.TrackingStatus.Status,
		SubStatus:      substatusCode(resp.TrackingStatus.SubStatus),
		Location:       resp.TrackingStatus.Location.String(),
		UpdatedAt:      parseShippoTime(resp.TrackingStatus.StatusDate, time.Now()),
	}
	if status.Status == "" {
		status.Status = models.CarrierStatusUnknown
	}
	if resp.ETA != "" {
		if eta, err := time.Parse(time.RFC3339, resp.ETA); err == nil {
			status.ETA = &eta
		}
	}
	for _, h := range resp.TrackingHistory {
		status.History = append(status.History, models.TrackingEvent{
			Status:    h.Status,
			Details:   h.StatusDetails,
			Location:  h.Location.String(),
			Timestamp: parseShippoTime(h.StatusDate, time.Time{}),
		})
	}

	return status, nil
}

// ---- HTTP helper ----

func (s *ShippoProvider) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "ShippoToken "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// ---- Conversion helpers ----

func toShippoAddress(a models.Address) shippoAddress {
	return shippoAddress{
		Name:    a.Name,
		Street1: a.Street1,
		Street2: a.Street2,
		City:    a.City,
		State:   a.State,
		Zip:     a.PostalCode,
		Country: a.Country,
		Phone:   a.Phone,
		Email:   a.Email,
	}
}

func toShippoParcel(p models.Parcel) shippoParcel {
	return shippoParcel{
		Length:       strconv.FormatFloat(p.LengthCm, 'f', 2, 64),
		Width:        strconv.FormatFloat(p.WidthCm, 'f', 2, 64),
		Height:       strconv.FormatFloat(p.HeightCm, 'f', 2, 64),
		DistanceUnit: "cm",
		Weight:       strconv.FormatFloat(p.WeightKg, 'f', 3, 64),
		MassUnit:     "kg",
	}
}

func parseShippoTime(v string, fallback time.Time) time.Time {
	if v == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	return fallback
}

// substatusCode accepts both the legacy string form and the object form
// ({"code": "..."}) of Shippo's substatus.
func substatusCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Code
	}
	return ""
}
