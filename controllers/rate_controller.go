package controllers

import (
	"net/http"

	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
)

// RateController serves shipping quotes.
type RateController struct {
	rateService services.RateService
	validator   *RequestValidator
}

func NewRateController(svc services.RateService) *RateController {
	return &RateController{rateService: svc, validator: NewRequestValidator()}
}

// Rates handles POST /api/shipping/rate
func (rc *RateController) Rates(c *gin.Context) {
	req, err := rc.validator.ParseRateRequest(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	rates, svcErr := rc.rateService.Rates(c.Request.Context(), req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rates": rates})
}

// Transit handles POST /api/shipping/transit
func (rc *RateController) Transit(c *gin.Context) {
	req, err := rc.validator.ParseRateRequest(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	transit, svcErr := rc.rateService.Transit(c.Request.Context(), req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transit": transit})
}

// Options handles POST /api/shipping/options
func (rc *RateController) Options(c *gin.Context) {
	req, err := rc.validator.ParseRateRequest(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	opts, svcErr := rc.rateService.Options(c.Request.Context(), req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"cheapest": opts.Cheapest,
		"fastest":  opts.Fastest,
		"options":  opts.Options,
	})
}
