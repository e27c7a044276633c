package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"time"
)

// 后台收件箱每页固定 12 条
const inquiryPageSize = 12

type Inquiry struct {
	ID         uint      `json:"id"`
	ParentName string    `json:"parent_name"`
	ChildAge   int       `json:"child_age"`
	Email      string    `json:"email"`
	Message    string    `json:"inquiry_Message"`
	CreatedAt  time.Time `json:"createdAt"`
}

type News struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"isActive"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type GalleryImage struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"imageUrl"`
	ImageWidth  int       `json:"imageWidth"`
	ImageHeight int       `json:"imageHeight"`
	IsActive    bool      `json:"isActive"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InquiryPage 是收件箱当前页。
type InquiryPage struct {
	Items []Inquiry
	Page  int
	Pages int
	Total int64
}

type pageResponse[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
}

// NewsForm 用于新建新闻；Order 为 0 时自动排到末尾。
type NewsForm struct {
	Content  string
	IsActive bool
	Order    int
}

// NewsPatch 中为 nil 的字段不会发送。
type NewsPatch struct {
	Content  *string `json:"content,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
	Order    *int    `json:"order,omitempty"`
}

// ImageFile 是待上传的图片。ContentType 为空时按扩展名推断。
type ImageFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// GalleryForm 描述图库新建或修改请求，为 nil 的字段不会发送。
type GalleryForm struct {
	Title    *string
	IsActive *bool
	Order    *int
	Image    *ImageFile
}

// ListInquiries 拉取指定页的咨询记录，并记住当前页码。
func (s *Session) ListInquiries(ctx context.Context, page int) (InquiryPage, error) {
	if page < 1 {
		page = 1
	}
	var resp pageResponse[Inquiry]
	path := fmt.Sprintf("/inquiries?page=%d&limit=%d", page, inquiryPageSize)
	if err := s.authorized(ctx, http.MethodGet, path, nil, "", &resp); err != nil {
		return InquiryPage{}, err
	}

	result := InquiryPage{
		Items: resp.Data,
		Page:  resp.Pagination.Page,
		Pages: resp.Pagination.Pages,
		Total: resp.Pagination.Total,
	}
	if result.Page < 1 {
		result.Page = page
	}

	s.mu.Lock()
	s.inquiries = result
	s.mu.Unlock()
	return result, nil
}

// NextPage 翻到下一页；已在最后一页时返回当前页且不发请求。
func (s *Session) NextPage(ctx context.Context) (InquiryPage, error) {
	s.mu.Lock()
	current := s.inquiries
	s.mu.Unlock()

	if current.Page >= current.Pages {
		return current, nil
	}
	return s.ListInquiries(ctx, current.Page+1)
}

// PrevPage 翻到上一页；已在第一页时返回当前页且不发请求。
func (s *Session) PrevPage(ctx context.Context) (InquiryPage, error) {
	s.mu.Lock()
	current := s.inquiries
	s.mu.Unlock()

	if current.Page <= 1 {
		return current, nil
	}
	return s.ListInquiries(ctx, current.Page-1)
}

// ListNews 拉取全部新闻（含未启用的）。
func (s *Session) ListNews(ctx context.Context) ([]News, error) {
	var items []News
	if err := s.authorized(ctx, http.MethodGet, "/news/all", nil, "", &items); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.news = items
	s.mu.Unlock()
	return items, nil
}

// CreateNews 新建新闻，然后刷新新闻列表。
func (s *Session) CreateNews(ctx context.Context, form NewsForm) (*News, error) {
	if form.Order == 0 {
		s.mu.Lock()
		loaded := s.news != nil
		count := len(s.news)
		s.mu.Unlock()
		if !loaded {
			items, err := s.ListNews(ctx)
			if err != nil {
				return nil, err
			}
			count = len(items)
		}
		form.Order = count + 1
	}

	payload := map[string]any{
		"content":  form.Content,
		"isActive": form.IsActive,
		"order":    form.Order,
	}
	var created News
	if err := s.authorizedJSON(ctx, http.MethodPost, "/news", payload, &created); err != nil {
		return nil, err
	}
	if _, err := s.ListNews(ctx); err != nil {
		return &created, err
	}
	return &created, nil
}

// UpdateNews 只提交 patch 中出现的字段。
func (s *Session) UpdateNews(ctx context.Context, id uint, patch NewsPatch) (*News, error) {
	var updated News
	if err := s.authorizedJSON(ctx, http.MethodPut, fmt.Sprintf("/news/%d", id), patch, &updated); err != nil {
		return nil, err
	}
	if _, err := s.ListNews(ctx); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// ListGallery 拉取全部图库图片（含未启用的）。
func (s *Session) ListGallery(ctx context.Context) ([]GalleryImage, error) {
	var items []GalleryImage
	if err := s.authorized(ctx, http.MethodGet, "/gallery/all", nil, "", &items); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.gallery = items
	s.mu.Unlock()
	return items, nil
}

// CreateGalleryImage 上传一张新图片。
func (s *Session) CreateGalleryImage(ctx context.Context, form GalleryForm) (*GalleryImage, error) {
	var created GalleryImage
	if err := s.sendGalleryForm(ctx, http.MethodPost, "/gallery", form, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateGalleryImage 修改图片信息，form.Image 不为空时替换文件。
func (s *Session) UpdateGalleryImage(ctx context.Context, id uint, form GalleryForm) (*GalleryImage, error) {
	var updated GalleryImage
	if err := s.sendGalleryForm(ctx, http.MethodPut, fmt.Sprintf("/gallery/%d", id), form, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Session) sendGalleryForm(ctx context.Context, method, path string, form GalleryForm, out any) error {
	body, contentType, err := encodeGalleryForm(form)
	if err != nil {
		return err
	}
	return s.authorized(ctx, method, path, body, contentType, out)
}

func encodeGalleryForm(form GalleryForm) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{}
	if form.Title != nil {
		fields["title"] = *form.Title
	}
	if form.IsActive != nil {
		fields["isActive"] = strconv.FormatBool(*form.IsActive)
	}
	if form.Order != nil {
		fields["order"] = strconv.Itoa(*form.Order)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if form.Image != nil {
		contentType := form.Image.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(form.Image.Name))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(form.Image.Name)))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, form.Image.Data); err != nil {
			return nil, "", fmt.Errorf("read image %s: %w", form.Image.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
