package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunflowerskg/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondValidationError 在 error 之外附带字段名和规则，便于调用方区分缺失与格式错误。
func respondValidationError(c *gin.Context, verr *service.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": verr.Message,
		"field": verr.Field,
		"rule":  verr.Rule,
	})
}

// bindJSON 解析请求体；字段类型不符时按字段返回 malformed，其余解析失败返回通用信息。
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			respondValidationError(c, service.Malformed(typeErr.Field, typeErr.Field+" must be "+jsonTypeName(typeErr.Type)))
			return false
		}
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	default:
		return "a valid value"
	}
}

// parseIDParam 只接受正整数 ID。
func parseIDParam(c *gin.Context, key string) (uint, bool) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+key)
		return 0, false
	}
	return uint(id), true
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// listQuery 读取 page/limit，非法值回退到默认值。
func listQuery(c *gin.Context, defaultLimit int) service.ListQuery {
	return service.ListQuery{
		Page:  parsePositiveInt(c.Query("page"), 1),
		Limit: parsePositiveInt(c.Query("limit"), defaultLimit),
	}
}

// respondServiceError 将服务层错误映射为 HTTP 状态码，未知错误只记录日志并返回通用信息。
func (a *API) respondServiceError(c *gin.Context, err error, notFound, fallback string) {
	if verr, ok := service.AsValidationError(err); ok {
		respondValidationError(c, verr)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Unauthorized")
	default:
		a.log.WithError(err).WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(fallback)
		c.Error(err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func optionalFormValue(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

// parseFormBool 解析 multipart 中的布尔字段，缺省时返回 nil。
func parseFormBool(c *gin.Context, key string) (*bool, error) {
	raw := optionalFormValue(c, key)
	if raw == nil {
		return nil, nil
	}
	var value bool
	switch strings.TrimSpace(*raw) {
	case "true":
		value = true
	case "false":
		value = false
	default:
		return nil, service.Malformed(key, key+" must be true or false")
	}
	return &value, nil
}

// parseFormInt 解析 multipart 中的整数字段，缺省时返回 nil。
func parseFormInt(c *gin.Context, key string) (*int, error) {
	raw := optionalFormValue(c, key)
	if raw == nil {
		return nil, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, service.Malformed(key, key+" must be an integer")
	}
	return &value, nil
}
