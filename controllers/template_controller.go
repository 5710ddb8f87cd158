package controllers

import (
	"net/http"
	"strconv"

	"github.com/Hosanna-Mosa/c-t-sub002/middleware"
	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
)

type TemplateController struct {
	templateService services.TemplateService
	validator       *RequestValidator
}

func NewTemplateController(svc services.TemplateService) *TemplateController {
	return &TemplateController{templateService: svc, validator: NewRequestValidator()}
}

// List handles GET /api/templates. Only active templates unless ?all=true.
func (tc *TemplateController) List(c *gin.Context) {
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))
	templates, svcErr := tc.templateService.List(c.Request.Context(), !all)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "templates": templates})
}

func (tc *TemplateController) Get(c *gin.Context) {
	t, svcErr := tc.templateService.Get(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "template": t})
}

func (tc *TemplateController) Create(c *gin.Context) {
	in, err := tc.validator.ParseTemplateForm(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	t, svcErr := tc.templateService.Create(c.Request.Context(), in, middleware.GetUploadedFiles(c))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Template created", "template": t})
}

func (tc *TemplateController) Update(c *gin.Context) {
	in, err := tc.validator.ParseTemplateForm(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	t, svcErr := tc.templateService.Update(c.Request.Context(), c.Param("id"), in, middleware.GetUploadedFiles(c))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Template updated", "template": t})
}

func (tc *TemplateController) Delete(c *gin.Context) {
	if svcErr := tc.templateService.Delete(c.Request.Context(), c.Param("id")); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Template deleted"})
}
