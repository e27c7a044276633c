// Package storage 管理图库上传目录中的图片文件：校验、唯一命名、落盘与清理。
package storage

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedType = errors.New("only image files (jpg, png, gif, webp) are allowed")
	ErrTooLarge        = errors.New("file too large")
	ErrInvalidImage    = errors.New("file is not a valid image")
	ErrNotManaged      = errors.New("url is not managed by this store")
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// 解码得到的格式 -> 存储扩展名
var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// FileStore 负责上传目录的读写，是唯一写入该目录的组件。
type FileStore struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

// StoredFile 描述一次成功落盘的结果。
type StoredFile struct {
	Name   string
	Path   string
	URL    string
	Size   int64
	Width  int
	Height int
	Format string
}

// New 创建 FileStore，并确保目录存在。
func New(dir, urlPrefix string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &FileStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// Dir 返回上传目录。
func (s *FileStore) Dir() string {
	return s.dir
}

// URLPrefix 返回对外访问前缀。
func (s *FileStore) URLPrefix() string {
	return s.urlPrefix
}

// MaxBytes 返回单个文件的大小上限。
func (s *FileStore) MaxBytes() int64 {
	return s.maxBytes
}

// Validate 检查扩展名与声明的 MIME 类型都在白名单内，且大小不超过上限。
func (s *FileStore) Validate(filename, contentType string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return ErrUnsupportedType
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !allowedMIMETypes[strings.ToLower(mediaType)] {
		return ErrUnsupportedType
	}

	if s.maxBytes > 0 && size > s.maxBytes {
		return ErrTooLarge
	}
	return nil
}

// SaveUpload 校验并保存 multipart 上传的文件。
func (s *FileStore) SaveUpload(header *multipart.FileHeader) (*StoredFile, error) {
	if err := s.Validate(header.Filename, header.Header.Get("Content-Type"), header.Size); err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.save(src)
}

// Save 校验并保存任意来源的图片数据。
func (s *FileStore) Save(filename, contentType string, size int64, src io.ReadSeeker) (*StoredFile, error) {
	if err := s.Validate(filename, contentType, size); err != nil {
		return nil, err
	}
	return s.save(src)
}

func (s *FileStore) save(src io.ReadSeeker) (*StoredFile, error) {
	cfg, format, err := image.DecodeConfig(src)
	if err != nil {
		return nil, ErrInvalidImage
	}
	ext, ok := formatExtensions[format]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	// 文件名与原始文件名无关，避免冲突和路径穿越
	name := uuid.NewString() + ext
	fullPath := filepath.Join(s.dir, name)
	tmpPath := fullPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	var reader io.Reader = src
	if s.maxBytes > 0 {
		reader = io.LimitReader(src, s.maxBytes+1)
	}
	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		f.Close()
		os.Remove(tmpPath)
		return nil, ErrTooLarge
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("rename upload: %w", err)
	}

	return &StoredFile{
		Name:   name,
		Path:   fullPath,
		URL:    path.Join(s.urlPrefix, name),
		Size:   size,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}

// PathFor 将 imageUrl 映射为上传目录中的文件路径。
func (s *FileStore) PathFor(imageURL string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(imageURL))
	if !strings.HasPrefix(cleaned, s.urlPrefix+"/") {
		return "", ErrNotManaged
	}
	name := path.Base(cleaned)
	if name == "" || name == "." || name == "/" {
		return "", ErrNotManaged
	}
	return filepath.Join(s.dir, name), nil
}

// Remove 删除 imageUrl 对应的文件。文件已不存在时返回 removed=false 且无错误。
func (s *FileStore) Remove(imageURL string) (removed bool, err error) {
	fullPath, err := s.PathFor(imageURL)
	if err != nil {
		return false, err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove %s: %w", fullPath, err)
	}
	return true, nil
}

// Exists 判断 imageUrl 对应的文件是否存在。
func (s *FileStore) Exists(imageURL string) bool {
	fullPath, err := s.PathFor(imageURL)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}
