package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunflowerskg/internal/service"
)

// 表单字段本身很小，在文件上限之外预留的余量。
const multipartOverhead = 1 << 20

// parseGalleryForm 读取 multipart 表单，返回输入字段和可选的 image 文件。
func (a *API) parseGalleryForm(c *gin.Context) (service.GalleryInput, *multipart.FileHeader, bool) {
	var input service.GalleryInput

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUploadBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(a.maxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(c, http.StatusBadRequest, "Upload error: File too large")
		case errors.Is(err, http.ErrNotMultipart):
			respondError(c, http.StatusBadRequest, "Upload error: request must be multipart/form-data")
		default:
			respondError(c, http.StatusBadRequest, "Upload error: "+err.Error())
		}
		return input, nil, false
	}

	input.Title = optionalFormValue(c, "title")

	isActive, err := parseFormBool(c, "isActive")
	if err != nil {
		a.respondServiceError(c, err, "Gallery image not found", "Invalid form")
		return input, nil, false
	}
	input.IsActive = isActive

	order, err := parseFormInt(c, "order")
	if err != nil {
		a.respondServiceError(c, err, "Gallery image not found", "Invalid form")
		return input, nil, false
	}
	input.Order = order

	var upload *multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		files := form.File["image"]
		if len(files) > 1 {
			respondError(c, http.StatusBadRequest, "Upload error: only one image may be uploaded per request")
			return input, nil, false
		}
		if len(files) == 1 {
			upload = files[0]
		}
	}
	return input, upload, true
}

// ListGalleryImages returns active images for the public gallery.
func (a *API) ListGalleryImages(c *gin.Context) {
	result, err := a.gallery.List(listQuery(c, service.DefaultGalleryLimit))
	if err != nil {
		a.respondServiceError(c, err, "Gallery image not found", "Failed to fetch gallery images")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListAllGalleryImages returns every image including inactive ones.
func (a *API) ListAllGalleryImages(c *gin.Context) {
	items, err := a.gallery.ListAll(true)
	if err != nil {
		a.respondServiceError(c, err, "Gallery image not found", "Failed to fetch gallery images")
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateGalleryImage uploads a new image.
func (a *API) CreateGalleryImage(c *gin.Context) {
	input, upload, ok := a.parseGalleryForm(c)
	if !ok {
		return
	}
	item, err := a.gallery.Create(input, upload)
	if err != nil {
		a.respondServiceError(c, err, "Gallery image not found", "Failed to create gallery image")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateGalleryImage applies a partial update, optionally replacing the file.
func (a *API) UpdateGalleryImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input, upload, ok := a.parseGalleryForm(c)
	if !ok {
		return
	}
	item, err := a.gallery.Update(id, input, upload)
	if err != nil {
		a.respondServiceError(c, err, "Gallery image not found", "Failed to update gallery image")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteGalleryImage removes the record and its file.
func (a *API) DeleteGalleryImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.gallery.Delete(id); err != nil {
		a.respondServiceError(c, err, "Gallery image not found", "Failed to delete gallery image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gallery image deleted successfully"})
}
