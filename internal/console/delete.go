package console

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Kind 标识控制台管理的资源类型。
type Kind string

const (
	KindInquiry Kind = "inquiry"
	KindNews    Kind = "news"
	KindGallery Kind = "gallery"
)

// ParseKind 接受单复数两种写法。
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inquiry", "inquiries":
		return KindInquiry, nil
	case "news":
		return KindNews, nil
	case "gallery", "image", "images":
		return KindGallery, nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", raw)
	}
}

func (k Kind) path(id uint) string {
	switch k {
	case KindInquiry:
		return fmt.Sprintf("/inquiries/%d", id)
	case KindNews:
		return fmt.Sprintf("/news/%d", id)
	default:
		return fmt.Sprintf("/gallery/%d", id)
	}
}

// DeleteTarget 是等待确认的删除操作。
type DeleteTarget struct {
	Kind Kind
	ID   uint
}

// RequestDelete 记录待删除目标，真正的删除要等 ConfirmDelete。
func (s *Session) RequestDelete(kind Kind, id uint) DeleteTarget {
	target := DeleteTarget{Kind: kind, ID: id}
	s.mu.Lock()
	s.pendingDelete = &target
	s.mu.Unlock()
	return target
}

// PendingDelete 返回当前待确认的删除目标。
func (s *Session) PendingDelete() (DeleteTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete == nil {
		return DeleteTarget{}, false
	}
	return *s.pendingDelete, true
}

// CancelDelete 放弃待确认的删除。
func (s *Session) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = nil
	s.mu.Unlock()
}

// ConfirmDelete 执行待确认的删除。无论成功与否都会清除待删除目标，成功后刷新对应列表。
func (s *Session) ConfirmDelete(ctx context.Context) (DeleteTarget, error) {
	s.mu.Lock()
	pending := s.pendingDelete
	s.pendingDelete = nil
	page := s.inquiries.Page
	s.mu.Unlock()

	if pending == nil {
		return DeleteTarget{}, ErrNoPendingDelete
	}
	target := *pending

	if err := s.authorized(ctx, http.MethodDelete, target.Kind.path(target.ID), nil, "", nil); err != nil {
		return target, err
	}
	s.log.WithField("kind", target.Kind).WithField("id", target.ID).Info("deleted")

	var err error
	switch target.Kind {
	case KindInquiry:
		_, err = s.ListInquiries(ctx, page)
	case KindNews:
		_, err = s.ListNews(ctx)
	case KindGallery:
		_, err = s.ListGallery(ctx)
	}
	return target, err
}
