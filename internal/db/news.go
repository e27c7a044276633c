package db

import "time"

// News 是新闻滚动条中的一条消息。
type News struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsActive  bool      `gorm:"not null;index" json:"isActive"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// ContentHTML 只在公开列表中填充，不落库。
	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`
}
