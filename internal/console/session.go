// Package console 是后台管理控制台的会话层：登录一次后保存令牌、分页位置和待确认的删除目标，
// 所有操作都通过 REST API 完成。
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrNoPendingDelete = errors.New("no delete pending confirmation")
)

// APIError 是服务端返回的非 2xx 响应。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthorized 判断错误是否来自 401 响应。
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// User 是登录接口返回的账号信息。
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session 保存一次控制台登录的全部状态，可被多个 goroutine 共享。
type Session struct {
	httpClient *http.Client
	baseURL    string
	log        logrus.FieldLogger

	mu            sync.Mutex
	token         string
	user          *User
	inquiries     InquiryPage
	news          []News
	gallery       []GalleryImage
	pendingDelete *DeleteTarget
}

// New 创建控制台会话。baseURL 形如 http://localhost:3000/api/v1。
func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log.WithField("component", "console"),
		inquiries:  InquiryPage{Page: 1, Pages: 1},
	}
}

// Login 用账号密码换取令牌并保存在会话中。
func (s *Session) Login(ctx context.Context, username, password string) (*User, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := s.send(ctx, http.MethodPost, "/auth/login", "", bytes.NewReader(body), "application/json", &resp); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &resp.User
	s.mu.Unlock()

	s.log.WithField("username", resp.User.Username).Info("logged in")
	return &resp.User, nil
}

// Logout 清除令牌和所有缓存状态。
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.token = ""
	s.user = nil
	s.inquiries = InquiryPage{Page: 1, Pages: 1}
	s.news = nil
	s.gallery = nil
	s.pendingDelete = nil
}

// LoggedIn 报告会话当前是否持有令牌。
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// CurrentUser 返回登录时拿到的账号信息。
func (s *Session) CurrentUser() (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, false
	}
	user := *s.user
	return &user, true
}

// Token 返回当前令牌，便于命令行在多次调用之间保存。
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// UseToken 直接恢复一个已有的令牌。
func (s *Session) UseToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

func (s *Session) authToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", ErrNotLoggedIn
	}
	return s.token, nil
}

func (s *Session) authorized(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	token, err := s.authToken()
	if err != nil {
		return err
	}
	return s.send(ctx, method, path, token, body, contentType, out)
}

func (s *Session) authorizedJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return s.authorized(ctx, method, path, body, contentType, out)
}

// send 发出请求并解码响应；收到 401 时清空会话，相当于被登出。
func (s *Session) send(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			s.mu.Lock()
			if s.token == token {
				s.clearLocked()
			}
			s.mu.Unlock()
			s.log.Warn("session expired, logged out")
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
