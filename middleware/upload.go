package middleware

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	uploadFilesKey = "uploadedFiles"
	maxMemory      = 32 << 20
	MaxImageSize   = 10 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadImages collects up to maxCount image files from the multipart field
// and stores them for GetUploadedFiles. Zero files is allowed.
func UploadImages(field string, maxCount int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Next()
			return
		}
		if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
			abort(c, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		files := c.Request.MultipartForm.File[field]
		if len(files) > maxCount {
			abort(c, http.StatusBadRequest, fmt.Sprintf("Too many files for %s (max %d)", field, maxCount))
			return
		}
		for _, f := range files {
			if !IsValidImageType(f) {
				abort(c, http.StatusBadRequest, fmt.Sprintf("Invalid image type for file %s. Allowed: jpeg, jpg, png, webp, gif", f.Filename))
				return
			}
			if f.Size > MaxImageSize {
				abort(c, http.StatusBadRequest, fmt.Sprintf("File %s is too large (max %dMB)", f.Filename, MaxImageSize>>20))
				return
			}
		}

		c.Set(uploadFilesKey, files)
		c.Next()
	}
}

// GetUploadedFiles returns the files accepted by UploadImages.
func GetUploadedFiles(c *gin.Context) []*multipart.FileHeader {
	if v, ok := c.Get(uploadFilesKey); ok {
		if files, ok := v.([]*multipart.FileHeader); ok {
			return files
		}
	}
	return nil
}

// IsValidImageType checks the part's content type, falling back to the extension.
func IsValidImageType(file *multipart.FileHeader) bool {
	if allowedImageTypes[strings.ToLower(file.Header.Get("Content-Type"))] {
		return true
	}
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
