package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
)

const maxShipmentBody = 64 << 10

// ShipmentController handles label creation, carrier handoff and packing slips.
type ShipmentController struct {
	shipmentService services.ShipmentService
}

func NewShipmentController(svc services.ShipmentService) *ShipmentController {
	return &ShipmentController{shipmentService: svc}
}

// CreateLabel handles POST /api/shipments/create-label/:orderId
func (sc *ShipmentController) CreateLabel(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxShipmentBody))
	if err != nil {
		respondError(c, services.ValidationError("Invalid request body"))
		return
	}
	force := strings.EqualFold(strings.TrimSpace(c.Query("force")), "true")

	pkg, svcErr := services.ParsePackageInfo(body, force)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	result, svcErr := sc.shipmentService.CreateLabel(c.Request.Context(), c.Param("orderId"), pkg)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	message := "Shipping label created"
	if result.Reused {
		message = "Existing shipping label returned"
	}
	c.JSON(http.StatusOK, shipmentResponse(result, message))
}

// Handoff handles POST /api/shipments/handoff/:orderId
func (sc *ShipmentController) Handoff(c *gin.Context) {
	result, svcErr := sc.shipmentService.Handoff(c.Request.Context(), c.Param("orderId"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, shipmentResponse(result, "Order handed off to carrier"))
}

// PackingSlip handles GET /api/shipments/packing-slip/:orderId
func (sc *ShipmentController) PackingSlip(c *gin.Context) {
	pdf, filename, svcErr := sc.shipmentService.PackingSlip(c.Request.Context(), c.Param("orderId"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func shipmentResponse(r *services.ShipmentResult, message string) gin.H {
	return gin.H{
		"success":        true,
		"message":        message,
		"orderId":        r.OrderID,
		"trackingNumber": r.TrackingNumber,
		"labelUrl":       r.LabelURL,
		"labelPublicId":  r.LabelPublicID,
		"carrier":        r.Carrier,
		"trackingUrl":    r.TrackingURL,
		"status":         r.Status,
		"shipmentStatus": r.ShipmentStatus,
		"reused":         r.Reused,
	}
}
