package model

import "time"

type NoticeType string

const (
	NoticeInfo    NoticeType = "info"
	NoticeSuccess NoticeType = "success"
	NoticeWarning NoticeType = "warning"
	NoticeDanger  NoticeType = "danger"
)

// Notice 系统公告
type Notice struct {
	ID            string     `gorm:"primaryKey;type:text" json:"id"`
	Title         string     `gorm:"size:100;not null" json:"title"`
	Content       string     `gorm:"size:2000;not null" json:"content"`
	Type          NoticeType `gorm:"type:text;index;not null;default:info" json:"type"`
	CreatedBy     string     `gorm:"index" json:"createdBy"`
	CreatedByName string     `gorm:"-" json:"createdByName,omitempty"`
	Date          time.Time  `gorm:"index" json:"date"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type NoticeCreateRequest struct {
	Title   string     `json:"title" binding:"required,max=100"`
	Content string     `json:"content" binding:"required,max=2000"`
	Type    NoticeType `json:"type" binding:"omitempty,oneof=info success warning danger"`
}

type NoticeUpdateRequest struct {
	Title   *string     `json:"title" binding:"omitempty,max=100"`
	Content *string     `json:"content" binding:"omitempty,max=2000"`
	Type    *NoticeType `json:"type" binding:"omitempty,oneof=info success warning danger"`
}
