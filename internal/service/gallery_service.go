package service

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/sirupsen/logrus"
	"github.com/sunflowerskg/internal/db"
	"github.com/sunflowerskg/internal/metrics"
	"github.com/sunflowerskg/internal/storage"
	"gorm.io/gorm"
)

const maxSwapAttempts = 3

// ImageStore 是图库服务依赖的文件存储能力。
type ImageStore interface {
	SaveUpload(header *multipart.FileHeader) (*storage.StoredFile, error)
	Remove(imageURL string) (bool, error)
}

// GalleryService handles gallery CRUD and keeps uploaded files in sync with records.
type GalleryService struct {
	db    *gorm.DB
	files ImageStore
	log   logrus.FieldLogger
}

// GalleryInput 中为 nil 的字段表示请求里没有出现该字段。
type GalleryInput struct {
	Title    *string
	IsActive *bool
	Order    *int
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB, files ImageStore, log logrus.FieldLogger) *GalleryService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GalleryService{
		db:    gdb,
		files: files,
		log:   log.WithField("component", "gallery"),
	}
}

func (s *GalleryService) scoped(includeInactive bool) *gorm.DB {
	query := s.db.Model(&db.GalleryImage{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	return query
}

// List returns gallery images ordered by sort order.
func (s *GalleryService) List(q ListQuery) (PageResult[db.GalleryImage], error) {
	return paginate[db.GalleryImage](s.scoped(q.IncludeInactive), q.Page, q.Limit, DefaultGalleryLimit,
		"sort_order asc", "id asc")
}

// ListAll returns every gallery image without pagination.
func (s *GalleryService) ListAll(includeInactive bool) ([]db.GalleryImage, error) {
	items := make([]db.GalleryImage, 0)
	if err := s.scoped(includeInactive).Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a gallery image by id.
func (s *GalleryService) Get(id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create stores the uploaded file and inserts the record pointing at it.
func (s *GalleryService) Create(input GalleryInput, upload *multipart.FileHeader) (*db.GalleryImage, error) {
	if upload == nil {
		return nil, &ValidationError{Field: "image", Rule: RuleMissing, Message: "Image file is required"}
	}
	title, err := requiredText("title", input.Title)
	if err != nil {
		return nil, err
	}

	stored, err := s.saveFile(upload)
	if err != nil {
		return nil, err
	}

	item := db.GalleryImage{
		Title:       title,
		ImageURL:    stored.URL,
		ImageWidth:  stored.Width,
		ImageHeight: stored.Height,
		IsActive:    true,
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if input.Order != nil {
		item.SortOrder = *input.Order
	}

	if err := s.db.Create(&item).Error; err != nil {
		s.removeFile(stored.URL, "create failed")
		return nil, err
	}
	return &item, nil
}

// Update applies the present fields; a new upload replaces the old file in the same update.
func (s *GalleryService) Update(id uint, input GalleryInput, upload *multipart.FileHeader) (*db.GalleryImage, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title, err := requiredText("title", input.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Order != nil {
		updates["sort_order"] = *input.Order
	}

	var stored *storage.StoredFile
	if upload != nil {
		stored, err = s.saveFile(upload)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = stored.URL
		updates["image_width"] = stored.Width
		updates["image_height"] = stored.Height
	}

	if len(updates) == 0 {
		return item, nil
	}

	if stored == nil {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, err
		}
		return s.Get(id)
	}

	oldURL, err := s.swapImage(item, updates)
	if err != nil {
		s.removeFile(stored.URL, "update failed")
		return nil, err
	}

	// 新文件已生效，旧文件在同一请求内清理
	if oldURL != "" && oldURL != stored.URL {
		s.removeFile(oldURL, "replaced")
	}
	return s.Get(id)
}

// swapImage 只在 image_url 仍是读取时的值时写入，返回被替换的旧地址。
// 并发替换时重新读取记录后重试，保证每个写入的文件要么被记录引用，要么被删除。
func (s *GalleryService) swapImage(item *db.GalleryImage, updates map[string]interface{}) (string, error) {
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		oldURL := item.ImageURL
		result := s.db.Model(&db.GalleryImage{}).
			Where("id = ? AND image_url = ?", item.ID, oldURL).
			Updates(updates)
		if result.Error != nil {
			return "", result.Error
		}
		if result.RowsAffected > 0 {
			return oldURL, nil
		}

		s.log.WithFields(logrus.Fields{"id": item.ID, "image_url": oldURL}).Info("gallery image changed concurrently, retrying")
		fresh, err := s.Get(item.ID)
		if err != nil {
			return "", err
		}
		item = fresh
	}
	return "", fmt.Errorf("gallery image %d: %w", item.ID, ErrConcurrentUpdate)
}

// Delete removes the record first and then its file; a missing file is not an error.
func (s *GalleryService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return err
	}
	if item.ImageURL != "" {
		s.removeFile(item.ImageURL, "deleted")
	}
	return nil
}

func (s *GalleryService) saveFile(upload *multipart.FileHeader) (*storage.StoredFile, error) {
	stored, err := s.files.SaveUpload(upload)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrInvalidImage):
			metrics.RecordFileOperation("save", "rejected")
			return nil, &ValidationError{Field: "image", Rule: RuleMalformed, Message: err.Error(), Err: err}
		case errors.Is(err, storage.ErrTooLarge):
			metrics.RecordFileOperation("save", "rejected")
			return nil, &ValidationError{Field: "image", Rule: RuleMalformed, Message: "Upload error: File too large", Err: err}
		default:
			metrics.RecordFileOperation("save", "error")
			return nil, err
		}
	}
	metrics.RecordFileOperation("save", "ok")
	return stored, nil
}

// removeFile 尽力删除文件，失败只记录日志。
func (s *GalleryService) removeFile(imageURL, reason string) {
	entry := s.log.WithFields(logrus.Fields{"image_url": imageURL, "reason": reason})

	removed, err := s.files.Remove(imageURL)
	switch {
	case err != nil:
		metrics.RecordFileOperation("remove", "error")
		entry.WithError(err).Warn("failed to remove gallery file")
	case !removed:
		metrics.RecordFileOperation("remove", "missing")
		entry.Info("gallery file already missing")
	default:
		metrics.RecordFileOperation("remove", "ok")
		entry.Debug("gallery file removed")
	}
}
