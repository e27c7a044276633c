package service

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sunflowerskg/internal/db"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	newsMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	newsSanitizer = buildNewsSanitizer()
)

// 滚动条只允许行内标记
func buildNewsSanitizer() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("strong", "em", "del", "code", "br")
	policy.AllowStandardURLs()
	policy.AllowAttrs("href").OnElements("a")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// RenderNewsContent 将新闻内容按 Markdown 渲染为净化后的行内 HTML。
func RenderNewsContent(content string) string {
	var buf bytes.Buffer
	if err := newsMarkdown.Convert([]byte(content), &buf); err != nil {
		return newsSanitizer.Sanitize(content)
	}
	rendered := strings.TrimSpace(newsSanitizer.Sanitize(buf.String()))
	return rendered
}

// RenderNewsHTML 为公开列表中的每条新闻填充 ContentHTML。
func RenderNewsHTML(items []db.News) []db.News {
	for i := range items {
		items[i].ContentHTML = RenderNewsContent(items[i].Content)
	}
	return items
}
