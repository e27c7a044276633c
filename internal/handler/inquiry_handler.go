package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunflowerskg/internal/service"
)

// child_age 同时接受数字和数字字符串，所以保留原始值再解析。
type inquiryPayload struct {
	ParentName *string     `json:"parent_name"`
	ChildAge   interface{} `json:"child_age"`
	Email      *string     `json:"email"`
	Message    *string     `json:"inquiry_Message"`
}

func (p inquiryPayload) toInput() (service.InquiryInput, error) {
	input := service.InquiryInput{
		ParentName: p.ParentName,
		Email:      p.Email,
		Message:    p.Message,
	}
	if p.ChildAge != nil {
		age, err := service.ParseChildAge(p.ChildAge)
		if err != nil {
			return input, err
		}
		input.ChildAge = &age
	}
	return input, nil
}

// ListInquiries returns a page of inquiries, newest first.
func (a *API) ListInquiries(c *gin.Context) {
	result, err := a.inquiries.List(listQuery(c, service.DefaultInquiryLimit))
	if err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to fetch inquiries")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListAllInquiries returns every inquiry without pagination.
func (a *API) ListAllInquiries(c *gin.Context) {
	items, err := a.inquiries.ListAll()
	if err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to fetch inquiries")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetInquiry returns a single inquiry.
func (a *API) GetInquiry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := a.inquiries.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to fetch inquiry")
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateInquiry stores a public contact form submission.
func (a *API) CreateInquiry(c *gin.Context) {
	var payload inquiryPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}
	input, err := payload.toInput()
	if err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to submit inquiry")
		return
	}

	item, err := a.inquiries.Create(input)
	if err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to submit inquiry")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateInquiry applies a partial update.
func (a *API) UpdateInquiry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload inquiryPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}
	input, err := payload.toInput()
	if err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to update inquiry")
		return
	}

	item, err := a.inquiries.Update(id, input)
	if err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to update inquiry")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteInquiry removes an inquiry.
func (a *API) DeleteInquiry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.inquiries.Delete(id); err != nil {
		a.respondServiceError(c, err, "Inquiry not found", "Failed to delete inquiry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inquiry deleted successfully"})
}
