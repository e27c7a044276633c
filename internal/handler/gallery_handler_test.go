package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/sunflowerskg/internal/db"
)

func createGalleryImage(t *testing.T, env *testEnv, title string) db.GalleryImage {
	t.Helper()
	rr := env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": title}, &formFile{
		filename:    "photo.png",
		contentType: "image/png",
		data:        testPNG(t),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var item db.GalleryImage
	decodeBody(t, rr, &item)
	return item
}

func TestCreateGalleryImageStoresFile(t *testing.T) {
	env := setupTestAPI(t)

	item := createGalleryImage(t, env, "Garden day")
	if !strings.HasPrefix(item.ImageURL, "/uploads/gallery/") || !strings.HasSuffix(item.ImageURL, ".png") {
		t.Fatalf("unexpected imageUrl %q", item.ImageURL)
	}
	if strings.Contains(item.ImageURL, "photo") {
		t.Fatalf("stored name must not derive from the original filename: %q", item.ImageURL)
	}
	if !item.IsActive || item.ImageWidth != 6 || item.ImageHeight != 4 {
		t.Fatalf("unexpected record %+v", item)
	}
	if !env.files.Exists(item.ImageURL) {
		t.Fatalf("expected file for %s to exist", item.ImageURL)
	}
}

func TestCreateGalleryImageRejectsMismatchedMIME(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": "Sneaky"}, &formFile{
		filename:    "notes.png",
		contentType: "text/plain",
		data:        testPNG(t),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if count := countRows(t, env.api, &db.GalleryImage{}); count != 0 {
		t.Fatalf("expected no record, got %d", count)
	}
	entries, err := os.ReadDir(env.files.Dir())
	if err != nil {
		t.Fatalf("failed to read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no stored files, got %d", len(entries))
	}
}

func TestCreateGalleryImageValidation(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": "No file"}, nil)
	if rr.Code != http.StatusBadRequest || errorMessage(t, rr) != "Image file is required" {
		t.Fatalf("expected missing image error, got %d %s", rr.Code, rr.Body.String())
	}

	rr = env.doMultipart(t, http.MethodPost, "/api/v1/gallery", nil, &formFile{
		filename: "photo.png", contentType: "image/png", data: testPNG(t),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", rr.Code)
	}

	rr = env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": "x", "isActive": "maybe"}, &formFile{
		filename: "photo.png", contentType: "image/png", data: testPNG(t),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed isActive, got %d", rr.Code)
	}

	for _, raw := range []string{"1", "TRUE", "t"} {
		rr = env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": "x", "isActive": raw}, &formFile{
			filename: "photo.png", contentType: "image/png", data: testPNG(t),
		})
		if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `"field":"isActive"`) {
			t.Fatalf("expected isActive %q to be rejected, got %d %s", raw, rr.Code, rr.Body.String())
		}
	}

	rr = env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": "x", "order": "1.5"}, &formFile{
		filename: "photo.png", contentType: "image/png", data: testPNG(t),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed order, got %d", rr.Code)
	}

	rr = env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": "x"}, &formFile{
		filename: "fake.jpg", contentType: "image/jpeg", data: []byte("not an image"),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for undecodable image, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/v1/gallery", env.token, strings.NewReader(`{"title":"json"}`), "application/json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non multipart body, got %d", rr.Code)
	}
}

func TestCreateGalleryImageRejectsOversizedFile(t *testing.T) {
	env := setupTestAPI(t)

	data := append(testPNG(t), bytes.Repeat([]byte{0}, testUploadLimit)...)
	rr := env.doMultipart(t, http.MethodPost, "/api/v1/gallery", map[string]string{"title": "Huge"}, &formFile{
		filename: "huge.png", contentType: "image/png", data: data,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if msg := errorMessage(t, rr); msg != "Upload error: File too large" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestUpdateGalleryImageReplacesFile(t *testing.T) {
	env := setupTestAPI(t)

	item := createGalleryImage(t, env, "Before")

	rr := env.doMultipart(t, http.MethodPut, fmt.Sprintf("/api/v1/gallery/%d", item.ID), nil, &formFile{
		filename: "after.png", contentType: "image/png", data: testPNG(t),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated db.GalleryImage
	decodeBody(t, rr, &updated)

	if updated.ImageURL == item.ImageURL {
		t.Fatalf("expected a new imageUrl")
	}
	if updated.Title != "Before" {
		t.Fatalf("expected title to stay unchanged, got %q", updated.Title)
	}
	if env.files.Exists(item.ImageURL) {
		t.Fatalf("expected old file %s to be removed", item.ImageURL)
	}
	if !env.files.Exists(updated.ImageURL) {
		t.Fatalf("expected new file %s to exist", updated.ImageURL)
	}
}

func TestUpdateGalleryImageFieldsOnly(t *testing.T) {
	env := setupTestAPI(t)

	item := createGalleryImage(t, env, "Original")

	rr := env.doMultipart(t, http.MethodPut, fmt.Sprintf("/api/v1/gallery/%d", item.ID), map[string]string{
		"isActive": "false",
		"order":    "3",
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated db.GalleryImage
	decodeBody(t, rr, &updated)
	if updated.IsActive || updated.SortOrder != 3 || updated.Title != "Original" || updated.ImageURL != item.ImageURL {
		t.Fatalf("unexpected update result %+v", updated)
	}

	var page struct {
		Data []db.GalleryImage `json:"data"`
	}
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/gallery", "", nil, ""), &page)
	if len(page.Data) != 0 {
		t.Fatalf("expected inactive image hidden from public list")
	}
	var all []db.GalleryImage
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/gallery/all", env.token, nil, ""), &all)
	if len(all) != 1 {
		t.Fatalf("expected admin list to include inactive image")
	}
}

func TestUpdateMissingGalleryImageDoesNotStoreFile(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.doMultipart(t, http.MethodPut, "/api/v1/gallery/77", nil, &formFile{
		filename: "orphan.png", contentType: "image/png", data: testPNG(t),
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	entries, _ := os.ReadDir(env.files.Dir())
	if len(entries) != 0 {
		t.Fatalf("expected no orphaned file, got %d", len(entries))
	}
}

func TestDeleteGalleryImageToleratesMissingFile(t *testing.T) {
	env := setupTestAPI(t)

	item := createGalleryImage(t, env, "Gone")
	path, err := env.files.PathFor(item.ImageURL)
	if err != nil {
		t.Fatalf("failed to resolve path: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file manually: %v", err)
	}

	rr := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/gallery/%d", item.ID), env.token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var all []db.GalleryImage
	decodeBody(t, env.do(t, http.MethodGet, "/api/v1/gallery/all", env.token, nil, ""), &all)
	if len(all) != 0 {
		t.Fatalf("expected record to be gone, got %d", len(all))
	}

	rr = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/gallery/%d", item.ID), env.token, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestDeleteGalleryImageRemovesFile(t *testing.T) {
	env := setupTestAPI(t)

	item := createGalleryImage(t, env, "Cleanup")
	rr := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/gallery/%d", item.ID), env.token, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if env.files.Exists(item.ImageURL) {
		t.Fatalf("expected file to be removed")
	}
}
