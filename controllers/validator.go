package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const MaxPageNumber = 1000000

// productForm is the multipart form of both product kinds. List fields accept
// a JSON string array or a comma separated list.
type productForm struct {
	Name           string   `form:"name" validate:"required,max=255"`
	Slug           string   `form:"slug" validate:"omitempty,max=255"`
	Description    string   `form:"description"`
	Price          float64  `form:"price" validate:"gt=0"`
	Stock          int      `form:"stock" validate:"gte=0"`
	IsActive       *bool    `form:"isActive"`
	CompareAtPrice *float64 `form:"compareAtPrice" validate:"omitempty,gt=0"`
	Category       string   `form:"category" validate:"max=128"`
	Sizes          string   `form:"sizes"`
	Colors         string   `form:"colors"`
	MinQuantity    int      `form:"minQuantity" validate:"gte=0"`
	PrintSizes     string   `form:"printSizes"`
	TransferType   string   `form:"transferType" validate:"max=64"`
}

type templateForm struct {
	Name        string `form:"name" validate:"required,max=255"`
	Category    string `form:"category" validate:"max=128"`
	Description string `form:"description"`
	IsActive    *bool  `form:"isActive"`
}

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// ParsePagination validates page and limit. Limit is clamped by the service.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, errors.New("invalid page number")
	}
	if page > MaxPageNumber {
		page = MaxPageNumber
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))
	if err != nil || limit < 1 {
		return 0, 0, errors.New("invalid page size")
	}
	return page, limit, nil
}

func (rv *RequestValidator) ParseProductFilter(c *gin.Context) (models.ProductFilter, error) {
	page, limit, err := rv.ParsePagination(c)
	if err != nil {
		return models.ProductFilter{}, err
	}
	f := models.ProductFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
		Page:     page,
		Limit:    limit,
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return models.ProductFilter{}, errors.New("invalid boolean value for 'active'")
		}
		f.Active = &active
	}
	return f, nil
}

func (rv *RequestValidator) ParseProductForm(c *gin.Context) (services.ProductInput, error) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		return services.ProductInput{}, fmt.Errorf("invalid form data: %w", err)
	}
	if err := rv.validate.Struct(&form); err != nil {
		return services.ProductInput{}, fmt.Errorf("validation failed: %w", err)
	}

	in := services.ProductInput{
		Name:           form.Name,
		Slug:           form.Slug,
		Description:    form.Description,
		Price:          form.Price,
		Stock:          form.Stock,
		IsActive:       form.IsActive == nil || *form.IsActive,
		CompareAtPrice: form.CompareAtPrice,
		Category:       form.Category,
		MinQuantity:    form.MinQuantity,
		TransferType:   form.TransferType,
	}
	var err error
	if in.Sizes, err = parseList("sizes", form.Sizes); err != nil {
		return services.ProductInput{}, err
	}
	if in.Colors, err = parseList("colors", form.Colors); err != nil {
		return services.ProductInput{}, err
	}
	if in.PrintSizes, err = parseList("printSizes", form.PrintSizes); err != nil {
		return services.ProductInput{}, err
	}
	return in, nil
}

func (rv *RequestValidator) ParseTemplateForm(c *gin.Context) (services.TemplateInput, error) {
	var form templateForm
	if err := c.ShouldBind(&form); err != nil {
		return services.TemplateInput{}, fmt.Errorf("invalid form data: %w", err)
	}
	if err := rv.validate.Struct(&form); err != nil {
		return services.TemplateInput{}, fmt.Errorf("validation failed: %w", err)
	}
	return services.TemplateInput{
		Name:        form.Name,
		Category:    form.Category,
		Description: form.Description,
		IsActive:    form.IsActive == nil || *form.IsActive,
	}, nil
}

func (rv *RequestValidator) ParseRateRequest(c *gin.Context) (*models.RateQuoteRequest, error) {
	var req models.RateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	req.Destination.Country = strings.ToUpper(strings.TrimSpace(req.Destination.Country))
	if err := rv.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &req, nil
}

func parseList(field, raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("invalid %s format, must be a JSON string array", field)
		}
		return out, nil
	}
	return strings.Split(raw, ","), nil
}
