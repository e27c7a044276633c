package service

import (
	"errors"

	"github.com/sunflowerskg/internal/db"
	"gorm.io/gorm"
)

// NewsService handles news ticker CRUD.
type NewsService struct {
	db *gorm.DB
}

// NewsInput 中为 nil 的字段表示请求里没有出现该字段。
type NewsInput struct {
	Content  *string
	IsActive *bool
	Order    *int
}

// NewNewsService creates a NewsService instance.
func NewNewsService(gdb *gorm.DB) *NewsService {
	return &NewsService{db: gdb}
}

func (s *NewsService) scoped(includeInactive bool) *gorm.DB {
	query := s.db.Model(&db.News{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	return query
}

// List returns news ordered by sort order; inactive items only when requested.
func (s *NewsService) List(q ListQuery) (PageResult[db.News], error) {
	return paginate[db.News](s.scoped(q.IncludeInactive), q.Page, q.Limit, DefaultNewsLimit,
		"sort_order asc", "id asc")
}

// ListAll returns every news item without pagination.
func (s *NewsService) ListAll(includeInactive bool) ([]db.News, error) {
	items := make([]db.News, 0)
	if err := s.scoped(includeInactive).Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a news item by id.
func (s *NewsService) Get(id uint) (*db.News, error) {
	var item db.News
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a news item; isActive defaults to true and order to 0.
func (s *NewsService) Create(input NewsInput) (*db.News, error) {
	content, err := requiredText("content", input.Content)
	if err != nil {
		return nil, err
	}

	item := db.News{
		Content:  content,
		IsActive: true,
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if input.Order != nil {
		item.SortOrder = *input.Order
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies only the fields present in input.
func (s *NewsService) Update(id uint, input NewsInput) (*db.News, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Content != nil {
		content, err := requiredText("content", input.Content)
		if err != nil {
			return nil, err
		}
		updates["content"] = content
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Order != nil {
		updates["sort_order"] = *input.Order
	}

	if len(updates) == 0 {
		return item, nil
	}
	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a news item.
func (s *NewsService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}
