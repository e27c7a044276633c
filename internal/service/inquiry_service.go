package service

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sunflowerskg/internal/db"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InquiryService handles inquiry CRUD.
type InquiryService struct {
	db *gorm.DB
}

// InquiryInput 中为 nil 的字段表示请求里没有出现该字段。
type InquiryInput struct {
	ParentName *string
	ChildAge   *int
	Email      *string
	Message    *string
}

// NewInquiryService creates an InquiryService instance.
func NewInquiryService(gdb *gorm.DB) *InquiryService {
	return &InquiryService{db: gdb}
}

// List returns inquiries newest first.
func (s *InquiryService) List(q ListQuery) (PageResult[db.Inquiry], error) {
	return paginate[db.Inquiry](s.db.Model(&db.Inquiry{}), q.Page, q.Limit, DefaultInquiryLimit,
		"created_at desc", "id desc")
}

// ListAll returns every inquiry newest first.
func (s *InquiryService) ListAll() ([]db.Inquiry, error) {
	items := make([]db.Inquiry, 0)
	if err := s.db.Order("created_at desc").Order("id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches an inquiry by id.
func (s *InquiryService) Get(id uint) (*db.Inquiry, error) {
	var item db.Inquiry
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create validates and stores a public submission.
func (s *InquiryService) Create(input InquiryInput) (*db.Inquiry, error) {
	parentName, err := requiredText("parent_name", input.ParentName)
	if err != nil {
		return nil, err
	}
	if input.ChildAge == nil {
		return nil, Missing("child_age")
	}
	if err := validateChildAge(*input.ChildAge); err != nil {
		return nil, err
	}
	if input.Email == nil {
		return nil, Missing("email")
	}
	email, err := normalizeEmail(*input.Email)
	if err != nil {
		return nil, err
	}
	message, err := requiredText("inquiry_Message", input.Message)
	if err != nil {
		return nil, err
	}

	item := db.Inquiry{
		ParentName:     parentName,
		ChildAge:       *input.ChildAge,
		Email:          email,
		InquiryMessage: message,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update applies only the fields present in input.
func (s *InquiryService) Update(id uint, input InquiryInput) (*db.Inquiry, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.ParentName != nil {
		value, err := requiredText("parent_name", input.ParentName)
		if err != nil {
			return nil, err
		}
		updates["parent_name"] = value
	}
	if input.ChildAge != nil {
		if err := validateChildAge(*input.ChildAge); err != nil {
			return nil, err
		}
		updates["child_age"] = *input.ChildAge
	}
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if input.Message != nil {
		value, err := requiredText("inquiry_Message", input.Message)
		if err != nil {
			return nil, err
		}
		updates["inquiry_message"] = value
	}

	if len(updates) == 0 {
		return item, nil
	}
	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes an inquiry.
func (s *InquiryService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}

// ParseChildAge 接受 JSON 数字或数字字符串，其它类型视为格式错误。
func ParseChildAge(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, Malformed("child_age", "child_age must be a positive integer")
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, Missing("child_age")
		}
		age, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, Malformed("child_age", "child_age must be a positive integer")
		}
		return age, nil
	default:
		return 0, Malformed("child_age", "child_age must be a positive integer")
	}
}

func validateChildAge(age int) error {
	if age <= 0 {
		return Malformed("child_age", "child_age must be a positive integer")
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", Missing("email")
	}
	if !emailPattern.MatchString(email) {
		return "", Malformed("email", "email must be a valid email address")
	}
	return email, nil
}

func requiredText(field string, value *string) (string, error) {
	if value == nil {
		return "", Missing(field)
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return "", Missing(field)
	}
	return trimmed, nil
}
