package service

import "gorm.io/gorm"

const (
	DefaultInquiryLimit = 12
	DefaultNewsLimit    = 10
	DefaultGalleryLimit = 12

	maxPageLimit = 100
)

// ListQuery 是所有资源列表共用的查询参数。
// IncludeInactive 只应在调用方已通过认证时置为 true。
type ListQuery struct {
	Page            int
	Limit           int
	IncludeInactive bool
}

// Pagination 对应响应中的 pagination 字段。
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// PageResult 是分页列表的统一响应体。
type PageResult[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

// calculateTotalPages 返回 ceil(total/limit)，没有记录时为 0。
func calculateTotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// paginate 对已带过滤条件的查询执行 count + offset/limit，超出范围的页返回空数组。
func paginate[T any](query *gorm.DB, page, limit, fallback int, orders ...string) (PageResult[T], error) {
	result := PageResult[T]{
		Data: make([]T, 0),
		Pagination: Pagination{
			Page:  normalizePage(page),
			Limit: normalizeLimit(limit, fallback),
		},
	}

	if err := query.Session(&gorm.Session{}).Count(&result.Pagination.Total).Error; err != nil {
		return result, err
	}
	result.Pagination.Pages = calculateTotalPages(result.Pagination.Total, result.Pagination.Limit)

	offset := (result.Pagination.Page - 1) * result.Pagination.Limit
	if int64(offset) >= result.Pagination.Total {
		return result, nil
	}

	paged := query.Session(&gorm.Session{})
	for _, order := range orders {
		paged = paged.Order(order)
	}
	if err := paged.Limit(result.Pagination.Limit).Offset(offset).Find(&result.Data).Error; err != nil {
		return result, err
	}
	if result.Data == nil {
		result.Data = make([]T, 0)
	}
	return result, nil
}
