package services

import (
	"fmt"
	"strings"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

// PackingSlipRenderer draws an A4 packing slip for an order.
type PackingSlipRenderer struct {
	storeName string
	dark      color.Color
	muted     color.Color
}

func NewPackingSlipRenderer() *PackingSlipRenderer {
	return &PackingSlipRenderer{
		storeName: "PACKING SLIP",
		dark:      color.Color{Red: 38, Green: 38, Blue: 34},
		muted:     color.Color{Red: 121, Green: 119, Blue: 109},
	}
}

func packingSlipFilename(order *models.Order) string {
	ref := order.OrderNumber
	if ref == "" {
		ref = order.ID.String()
	}
	return fmt.Sprintf("packing-slip-%s.pdf", ref)
}

// Render returns the PDF bytes. The order must have a shipping address.
func (r *PackingSlipRenderer) Render(order *models.Order) ([]byte, error) {
	if order.ShippingAddress == nil {
		return nil, fmt.Errorf("order %s has no shipping address", order.ID)
	}
	addr := order.ShippingAddress

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	m.Row(15, func() {
		m.Col(8, func() {
			m.Text(r.storeName, props.Text{Size: 20, Style: consts.Bold, Color: r.dark})
		})
		m.Col(4, func() {
			m.Text(fmt.Sprintf("Order #%s", order.OrderNumber), props.Text{
				Size:  10,
				Style: consts.Bold,
				Color: r.dark,
				Align: consts.Right,
			})
		})
	})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text(order.CreatedAt.Format("Jan 02, 2006"), props.Text{Size: 9, Color: r.muted, Align: consts.Right})
		})
	})

	m.Row(8, func() {})

	m.Row(5, func() {
		m.Col(6, func() {
			m.Text("SHIP TO", props.Text{Size: 8, Style: consts.Bold, Color: r.dark})
		})
		m.Col(6, func() {
			m.Text("TRACKING", props.Text{Size: 8, Style: consts.Bold, Color: r.dark, Align: consts.Right})
		})
	})
	lines := addressLines(addr)
	tracking := trackingLines(order)
	for i := 0; i < len(lines) || i < len(tracking); i++ {
		left, right := lineAt(lines, i), lineAt(tracking, i)
		m.Row(5, func() {
			m.Col(6, func() {
				m.Text(left, props.Text{Size: 9, Color: r.dark})
			})
			m.Col(6, func() {
				m.Text(right, props.Text{Size: 9, Color: r.dark, Align: consts.Right})
			})
		})
	}

	m.Row(8, func() {})

	m.Row(6, func() {
		m.Col(6, func() {
			m.Text("Item", props.Text{Size: 8, Style: consts.Bold, Color: r.dark})
		})
		m.Col(2, func() {
			m.Text("Size", props.Text{Size: 8, Style: consts.Bold, Color: r.dark})
		})
		m.Col(2, func() {
			m.Text("Color", props.Text{Size: 8, Style: consts.Bold, Color: r.dark})
		})
		m.Col(2, func() {
			m.Text("Qty", props.Text{Size: 8, Style: consts.Bold, Color: r.dark, Align: consts.Right})
		})
	})
	totalQty := 0
	for _, item := range order.Items {
		item := item
		totalQty += item.Quantity
		m.Row(6, func() {
			m.Col(6, func() {
				m.Text(item.Name, props.Text{Size: 9, Color: r.dark})
			})
			m.Col(2, func() {
				m.Text(item.Size, props.Text{Size: 9, Color: r.muted})
			})
			m.Col(2, func() {
				m.Text(item.Color, props.Text{Size: 9, Color: r.muted})
			})
			m.Col(2, func() {
				m.Text(fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Color: r.dark, Align: consts.Right})
			})
		})
	}

	m.Row(8, func() {
		m.Col(10, func() {
			m.Text("Total items", props.Text{Size: 10, Style: consts.Bold, Color: r.dark, Align: consts.Right})
		})
		m.Col(2, func() {
			m.Text(fmt.Sprintf("%d", totalQty), props.Text{Size: 10, Style: consts.Bold, Color: r.dark, Align: consts.Right})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("generate packing slip: %w", err)
	}
	return buf.Bytes(), nil
}

func addressLines(a *models.Address) []string {
	lines := []string{a.Name, a.Street1}
	if a.Street2 != "" {
		lines = append(lines, a.Street2)
	}
	cityLine := strings.TrimSpace(strings.Join(nonEmpty(a.City, a.State, a.PostalCode), " "))
	lines = append(lines, cityLine, a.Country)
	if a.Phone != "" {
		lines = append(lines, a.Phone)
	}
	return lines
}

func trackingLines(order *models.Order) []string {
	if order.TrackingNumber == "" {
		return []string{"Label not yet created"}
	}
	lines := []string{order.TrackingNumber}
	if order.Carrier != "" {
		lines = append(lines, strings.ToUpper(order.Carrier))
	}
	return lines
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
