package controllers

import (
	"net/http"

	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
)

type syncRequest struct {
	OrderIDs []string `json:"orderIds"`
}

type TrackingController struct {
	trackingService services.TrackingService
}

func NewTrackingController(svc services.TrackingService) *TrackingController {
	return &TrackingController{trackingService: svc}
}

// ForOrder handles GET /api/tracking/order/:orderId
func (tc *TrackingController) ForOrder(c *gin.Context) {
	t, svcErr := tc.trackingService.ForOrder(c.Request.Context(), actorFrom(c), c.Param("orderId"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"orderId":        t.OrderID,
		"trackingNumber": t.TrackingNumber,
		"carrier":        t.Carrier,
		"trackingUrl":    t.TrackingURL,
		"status":         t.Status,
		"shipmentStatus": t.ShipmentStatus,
		"live":           t.Live,
		"tracking":       t.Tracking,
	})
}

// ByNumber handles GET /api/tracking/:trackingNumber?carrier=
func (tc *TrackingController) ByNumber(c *gin.Context) {
	t, svcErr := tc.trackingService.ByNumber(c.Request.Context(), c.Param("trackingNumber"), c.Query("carrier"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"trackingNumber": t.TrackingNumber,
		"orderId":        t.OrderID,
		"tracking":       t.Tracking,
	})
}

// Sync handles POST /api/tracking/sync
func (tc *TrackingController) Sync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, services.ValidationError("Invalid request body"))
			return
		}
	}

	out, svcErr := tc.trackingService.RequestSync(c.Request.Context(), actorFrom(c), req.OrderIDs)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	if out.Queued {
		c.JSON(http.StatusAccepted, gin.H{"success": true, "queued": true, "message": "Tracking sync queued"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"queued":  false,
		"checked": out.Result.Checked,
		"updated": out.Result.Updated,
		"failed":  out.Result.Failed,
	})
}
