package db

import "time"

// Inquiry 是家长通过联系表单提交的咨询
type Inquiry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ParentName     string    `gorm:"column:parent_name;not null" json:"parent_name"`
	ChildAge       int       `gorm:"column:child_age;not null" json:"child_age"`
	Email          string    `gorm:"not null;index" json:"email"`
	InquiryMessage string    `gorm:"column:inquiry_message;type:text;not null" json:"inquiry_Message"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}
