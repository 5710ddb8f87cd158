package controllers

import (
	"net/http"

	"github.com/Hosanna-Mosa/c-t-sub002/middleware"
	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
)

// ProductController serves one catalog kind; casual and DTF products each get
// their own instance.
type ProductController struct {
	productService services.ProductService
	validator      *RequestValidator
}

func NewProductController(svc services.ProductService) *ProductController {
	return &ProductController{productService: svc, validator: NewRequestValidator()}
}

func (pc *ProductController) List(c *gin.Context) {
	filter, err := pc.validator.ParseProductFilter(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	page, svcErr := pc.productService.List(c.Request.Context(), filter)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   page.Items,
		"total":   page.Total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}

func (pc *ProductController) GetByID(c *gin.Context) {
	p, svcErr := pc.productService.GetByID(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

func (pc *ProductController) GetBySlug(c *gin.Context) {
	p, svcErr := pc.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

func (pc *ProductController) Create(c *gin.Context) {
	in, err := pc.validator.ParseProductForm(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	p, svcErr := pc.productService.Create(c.Request.Context(), in, middleware.GetUploadedFiles(c))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product created", "product": p})
}

func (pc *ProductController) Update(c *gin.Context) {
	in, err := pc.validator.ParseProductForm(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	p, svcErr := pc.productService.Update(c.Request.Context(), c.Param("id"), in, middleware.GetUploadedFiles(c))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated", "product": p})
}

func (pc *ProductController) Delete(c *gin.Context) {
	if svcErr := pc.productService.Delete(c.Request.Context(), c.Param("id")); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
}
