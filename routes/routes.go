package routes

import (
	"github.com/Hosanna-Mosa/c-t-sub002/controllers"
	"github.com/Hosanna-Mosa/c-t-sub002/middleware"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/gin-gonic/gin"
)

// Guards are the middleware chains shared by the route tables.
type Guards struct {
	Auth      gin.HandlerFunc
	Admin     gin.HandlerFunc
	RateLimit gin.HandlerFunc
}

// NewGuards builds the shared chains. trustGateway accepts the gateway's
// identity headers and cookies in place of a bearer token.
func NewGuards(jwtSecret []byte, trustGateway bool, limiter *middleware.RateLimiter) Guards {
	return Guards{
		Auth:      middleware.Authenticate(jwtSecret, trustGateway),
		Admin:     middleware.AdminOnly(),
		RateLimit: middleware.RateLimit(limiter),
	}
}

func RegisterCasualProductRoutes(r *gin.Engine, pc *controllers.ProductController, g Guards) {
	registerProductRoutes(r.Group("/api/casual-products"), pc, g)
}

func RegisterDTFProductRoutes(r *gin.Engine, pc *controllers.ProductController, g Guards) {
	registerProductRoutes(r.Group("/api/dtf-products"), pc, g)
}

func registerProductRoutes(products *gin.RouterGroup, pc *controllers.ProductController, g Guards) {
	upload := middleware.UploadImages("images", models.MaxProductImages)

	products.GET("", pc.List)
	products.GET("/slug/:slug", pc.GetBySlug)
	products.GET("/:id", pc.GetByID)
	products.POST("", g.Auth, g.Admin, upload, pc.Create)
	products.PUT("/:id", g.Auth, g.Admin, upload, pc.Update)
	products.DELETE("/:id", g.Auth, g.Admin, pc.Delete)
}

func RegisterShipmentRoutes(r *gin.Engine, sc *controllers.ShipmentController, g Guards) {
	shipments := r.Group("/api/shipments")
	shipments.Use(g.Auth, g.Admin)

	shipments.POST("/create-label/:orderId", sc.CreateLabel)
	shipments.POST("/handoff/:orderId", sc.Handoff)
	shipments.GET("/packing-slip/:orderId", sc.PackingSlip)
}

func RegisterTrackingRoutes(r *gin.Engine, tc *controllers.TrackingController, g Guards) {
	tracking := r.Group("/api/tracking")

	tracking.GET("/order/:orderId", g.Auth, tc.ForOrder)
	tracking.POST("/sync", g.Auth, g.Admin, tc.Sync)

	// Public lookup
	tracking.GET("/:trackingNumber", g.RateLimit, tc.ByNumber)
}

func RegisterShippingRateRoutes(r *gin.Engine, rc *controllers.RateController, g Guards) {
	shipping := r.Group("/api/shipping")
	shipping.Use(g.Auth)

	shipping.POST("/rate", rc.Rates)
	shipping.POST("/transit", rc.Transit)
	shipping.POST("/options", rc.Options)
}

func RegisterTemplateRoutes(r *gin.Engine, tc *controllers.TemplateController, g Guards) {
	templates := r.Group("/api/templates")
	upload := middleware.UploadImages("image", models.MaxTemplateImages)

	templates.GET("", tc.List)
	templates.GET("/:id", tc.Get)
	templates.POST("", g.Auth, g.Admin, upload, tc.Create)
	templates.PUT("/:id", g.Auth, g.Admin, upload, tc.Update)
	templates.DELETE("/:id", g.Auth, g.Admin, tc.Delete)
}

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, g Guards) {
	payments := r.Group("/api/payments")
	payments.Use(g.Auth)

	payments.POST("/square/verify", pc.VerifySquare)
	payments.POST("/stripe/verify", pc.VerifyStripe)
}
