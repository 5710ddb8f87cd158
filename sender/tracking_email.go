package sender

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var trackingTemplate = template.Must(template.ParseFS(templateFS, "templates/tracking.html"))

// TrackingEmail is the data rendered into the shipment notification.
type TrackingEmail struct {
	Name           string
	OrderNumber    string
	TrackingNumber string
	TrackingURL    string
	Carrier        string
}

func (e TrackingEmail) Subject() string {
	if e.OrderNumber != "" {
		return fmt.Sprintf("Your order %s has shipped", e.OrderNumber)
	}
	return "Your order has shipped"
}

func (e TrackingEmail) Render() (string, error) {
	var buf bytes.Buffer
	if err := trackingTemplate.Execute(&buf, e); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return buf.String(), nil
}
