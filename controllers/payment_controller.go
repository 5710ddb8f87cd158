package controllers

import (
	"net/http"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(svc services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: svc}
}

// VerifySquare handles POST /api/payments/square/verify
func (pc *PaymentController) VerifySquare(c *gin.Context) {
	pc.verify(c, models.PaymentProviderSquare, func(r models.VerifyPaymentRequest) string { return r.PaymentID })
}

// VerifyStripe handles POST /api/payments/stripe/verify
func (pc *PaymentController) VerifyStripe(c *gin.Context) {
	pc.verify(c, models.PaymentProviderStripe, func(r models.VerifyPaymentRequest) string { return r.PaymentIntentID })
}

func (pc *PaymentController) verify(c *gin.Context, provider string, reference func(models.VerifyPaymentRequest) string) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, services.ValidationError("orderId is required"))
		return
	}

	res, svcErr := pc.paymentService.Verify(c.Request.Context(), actorFrom(c), provider, req.OrderID, reference(req))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	message := "Payment verified"
	if res.AlreadyVerified {
		message = "Payment already verified"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "payment": res})
}
