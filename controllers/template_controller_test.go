package controllers_test

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hosanna-Mosa/c-t-sub002/controllers"
	"github.com/Hosanna-Mosa/c-t-sub002/middleware"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeTemplateSvc struct {
	activeOnly bool
	input      services.TemplateInput
	files      []*multipart.FileHeader
	err        *services.ServiceError
}

func (f *fakeTemplateSvc) List(_ context.Context, activeOnly bool) ([]models.Template, *services.ServiceError) {
	f.activeOnly = activeOnly
	return []models.Template{{ID: "t1"}}, f.err
}

func (f *fakeTemplateSvc) Get(_ context.Context, id string) (*models.Template, *services.ServiceError) {
	return &models.Template{ID: id}, f.err
}

func (f *fakeTemplateSvc) Create(_ context.Context, in services.TemplateInput, files []*multipart.FileHeader) (*models.Template, *services.ServiceError) {
	f.input = in
	f.files = files
	if f.err != nil {
		return nil, f.err
	}
	return &models.Template{ID: "t-new", Name: in.Name}, nil
}

func (f *fakeTemplateSvc) Update(_ context.Context, id string, in services.TemplateInput, files []*multipart.FileHeader) (*models.Template, *services.ServiceError) {
	f.input = in
	f.files = files
	return &models.Template{ID: id, Name: in.Name}, f.err
}

func (f *fakeTemplateSvc) Delete(context.Context, string) *services.ServiceError {
	return f.err
}

func setupTemplateRouter(svc services.TemplateService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := controllers.NewTemplateController(svc)

	r.GET("/api/templates", c.List)
	r.GET("/api/templates/:id", c.Get)
	r.POST("/api/templates", middleware.UploadImages("image", models.MaxTemplateImages), c.Create)
	r.PUT("/api/templates/:id", middleware.UploadImages("image", models.MaxTemplateImages), c.Update)
	r.DELETE("/api/templates/:id", c.Delete)
	return r
}

func TestListTemplates(t *testing.T) {
	svc := &fakeTemplateSvc{}
	r := setupTemplateRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.activeOnly)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates?all=true", nil))
	assert.False(t, svc.activeOnly)
}

func TestCreateTemplate(t *testing.T) {
	svc := &fakeTemplateSvc{}
	r := setupTemplateRouter(svc)

	body, contentType := multipartBody(t, "image", map[string]string{"name": "Retro", "category": "vintage"}, "retro.png")
	req := httptest.NewRequest(http.MethodPost, "/api/templates", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Retro", svc.input.Name)
	assert.True(t, svc.input.IsActive)
	assert.Len(t, svc.files, 1)
}

func TestCreateTemplate_RejectsSecondImage(t *testing.T) {
	svc := &fakeTemplateSvc{}
	r := setupTemplateRouter(svc)

	body, contentType := multipartBody(t, "image", map[string]string{"name": "Retro"}, "a.png", "b.png")
	req := httptest.NewRequest(http.MethodPost, "/api/templates", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.input.Name)
}

func TestDeleteTemplate_NotFound(t *testing.T) {
	svc := &fakeTemplateSvc{err: services.NotFoundError("Template not found")}
	r := setupTemplateRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/templates/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Template not found", decode(t, w)["message"])
}
