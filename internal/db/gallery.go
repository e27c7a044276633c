package db

import "time"

// GalleryImage 定义图库图片记录，ImageURL 指向上传目录中的文件
type GalleryImage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	ImageURL    string    `gorm:"column:image_url;not null" json:"imageUrl"`
	ImageWidth  int       `json:"imageWidth"`
	ImageHeight int       `json:"imageHeight"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
