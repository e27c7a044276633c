package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunflowerskg/internal/service"
)

type newsPayload struct {
	Content  *string `json:"content"`
	IsActive *bool   `json:"isActive"`
	Order    *int    `json:"order"`
}

func (p newsPayload) toInput() service.NewsInput {
	return service.NewsInput{
		Content:  p.Content,
		IsActive: p.IsActive,
		Order:    p.Order,
	}
}

// ListNews returns active news for the public ticker.
func (a *API) ListNews(c *gin.Context) {
	result, err := a.news.List(listQuery(c, service.DefaultNewsLimit))
	if err != nil {
		a.respondServiceError(c, err, "News not found", "Failed to fetch news")
		return
	}
	result.Data = service.RenderNewsHTML(result.Data)
	c.JSON(http.StatusOK, result)
}

// ListAllNews returns every news item including inactive ones.
func (a *API) ListAllNews(c *gin.Context) {
	items, err := a.news.ListAll(true)
	if err != nil {
		a.respondServiceError(c, err, "News not found", "Failed to fetch news")
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateNews creates a news item.
func (a *API) CreateNews(c *gin.Context) {
	var payload newsPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}
	item, err := a.news.Create(payload.toInput())
	if err != nil {
		a.respondServiceError(c, err, "News not found", "Failed to create news")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateNews applies a partial update.
func (a *API) UpdateNews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload newsPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}
	item, err := a.news.Update(id, payload.toInput())
	if err != nil {
		a.respondServiceError(c, err, "News not found", "Failed to update news")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteNews removes a news item.
func (a *API) DeleteNews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.news.Delete(id); err != nil {
		a.respondServiceError(c, err, "News not found", "Failed to delete news")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "News deleted successfully"})
}
