package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sunflowerskg/internal/db"
	"github.com/sunflowerskg/internal/handler"
	"github.com/sunflowerskg/internal/logging"
	"github.com/sunflowerskg/internal/router"
	"github.com/sunflowerskg/internal/service"
	"github.com/sunflowerskg/internal/storage"
)

func setupConsole(t *testing.T) (*Session, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(db.Options{
		Driver: db.DriverSQLite,
		Path:   fmt.Sprintf("file:console-%d?mode=memory&cache=shared", time.Now().UnixNano()),
		Silent: true,
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })

	if _, err := db.EnsureUser(gdb, "admin", "admin123", "admin@example.com"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	uploadDir := t.TempDir()
	files, err := storage.New(uploadDir, "/uploads/gallery", 1<<20)
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	api := handler.NewAPI(gdb, files, service.NewAuthService(gdb, "console-secret", time.Hour), logging.Discard())
	srv := httptest.NewServer(router.SetupRouter(api, router.Options{
		UploadDir:     uploadDir,
		UploadURLPath: "/uploads/gallery",
		Logger:        logging.Discard(),
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL+"/api/v1", 5*time.Second, logging.Discard()), srv
}

func login(t *testing.T, s *Session) {
	t.Helper()
	if _, err := s.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func submitInquiry(t *testing.T, srv *httptest.Server, name string) {
	t.Helper()
	body := fmt.Sprintf(`{"parent_name":%q,"child_age":3,"email":"p@example.com","inquiry_Message":"hi"}`, name)
	resp, err := http.Post(srv.URL+"/api/v1/inquiries", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to submit inquiry: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func pngData(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoginAndLogout(t *testing.T) {
	s, _ := setupConsole(t)
	ctx := context.Background()

	if _, err := s.ListNews(ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	if _, err := s.Login(ctx, "admin", "nope"); !IsUnauthorized(err) {
		t.Fatalf("expected 401 for bad password, got %v", err)
	}

	login(t, s)
	if !s.LoggedIn() {
		t.Fatalf("expected session to be logged in")
	}
	if user, ok := s.CurrentUser(); !ok || user.Username != "admin" {
		t.Fatalf("unexpected current user %+v", user)
	}

	s.Logout()
	if s.LoggedIn() {
		t.Fatalf("expected session to be logged out")
	}
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	s, _ := setupConsole(t)

	s.UseToken("expired-token")
	_, err := s.ListGallery(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if s.LoggedIn() {
		t.Fatalf("expected 401 to clear the token")
	}
}

func TestInquiryPaging(t *testing.T) {
	s, srv := setupConsole(t)
	ctx := context.Background()
	for i := 1; i <= 14; i++ {
		submitInquiry(t, srv, fmt.Sprintf("Parent %d", i))
	}
	login(t, s)

	page, err := s.ListInquiries(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Items) != 12 || page.Pages != 2 || page.Total != 14 {
		t.Fatalf("unexpected first page %+v", page)
	}

	if page, err = s.PrevPage(ctx); err != nil || page.Page != 1 {
		t.Fatalf("expected to stay on page 1, got %d (%v)", page.Page, err)
	}
	if page, err = s.NextPage(ctx); err != nil || page.Page != 2 || len(page.Items) != 2 {
		t.Fatalf("expected page 2 with 2 items, got %+v (%v)", page, err)
	}
	if page, err = s.NextPage(ctx); err != nil || page.Page != 2 {
		t.Fatalf("expected to stay on last page, got %d (%v)", page.Page, err)
	}
}

func TestCreateNewsAssignsNextOrder(t *testing.T) {
	s, _ := setupConsole(t)
	ctx := context.Background()
	login(t, s)

	first, err := s.CreateNews(ctx, NewsForm{Content: "first", IsActive: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := s.CreateNews(ctx, NewsForm{Content: "second", IsActive: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Order != 1 || second.Order != 2 {
		t.Fatalf("expected orders 1 and 2, got %d and %d", first.Order, second.Order)
	}

	inactive := false
	updated, err := s.UpdateNews(ctx, first.ID, NewsPatch{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.IsActive || updated.Content != "first" || updated.Order != 1 {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	s, _ := setupConsole(t)
	ctx := context.Background()
	login(t, s)

	item, err := s.CreateNews(ctx, NewsForm{Content: "temp", IsActive: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	s.RequestDelete(KindNews, item.ID)
	s.CancelDelete()
	if _, ok := s.PendingDelete(); ok {
		t.Fatalf("expected no pending delete after cancel")
	}
	if _, err := s.ConfirmDelete(ctx); !errors.Is(err, ErrNoPendingDelete) {
		t.Fatalf("expected ErrNoPendingDelete, got %v", err)
	}

	s.RequestDelete(KindNews, item.ID)
	if _, err := s.ConfirmDelete(ctx); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	items, err := s.ListNews(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected news to be deleted, got %d", len(items))
	}

	s.RequestDelete(KindNews, item.ID)
	_, err = s.ConfirmDelete(ctx)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 api error, got %v", err)
	}
	if _, ok := s.PendingDelete(); ok {
		t.Fatalf("expected failed delete to clear the pending target")
	}
}

func TestGalleryUploadAndReplace(t *testing.T) {
	s, srv := setupConsole(t)
	ctx := context.Background()
	login(t, s)

	title := "Sports day"
	created, err := s.CreateGalleryImage(ctx, GalleryForm{
		Title: &title,
		Image: &ImageFile{Name: "sports.png", Data: bytes.NewReader(pngData(t))},
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	resp, err := http.Get(srv.URL + created.ImageURL)
	if err != nil {
		t.Fatalf("failed to fetch uploaded image: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected uploaded image to be served, got %d", resp.StatusCode)
	}

	updated, err := s.UpdateGalleryImage(ctx, created.ID, GalleryForm{
		Image: &ImageFile{Name: "sports-2.png", Data: bytes.NewReader(pngData(t))},
	})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if updated.ImageURL == created.ImageURL || updated.Title != title {
		t.Fatalf("unexpected replace result %+v", updated)
	}

	resp, err = http.Get(srv.URL + created.ImageURL)
	if err != nil {
		t.Fatalf("failed to fetch old image: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected old image to be gone, got %d", resp.StatusCode)
	}

	_, err = s.CreateGalleryImage(ctx, GalleryForm{
		Title: &title,
		Image: &ImageFile{Name: "notes.png", ContentType: "text/plain", Data: strings.NewReader("hello")},
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched type, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"inquiries": KindInquiry,
		"Inquiry":   KindInquiry,
		"news":      KindNews,
		"gallery":   KindGallery,
		"images":    KindGallery,
	}
	for raw, expected := range tests {
		got, err := ParseKind(raw)
		if err != nil || got != expected {
			t.Fatalf("ParseKind(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseKind("users"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
