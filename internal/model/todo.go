package model

import "time"

type Priority string

const (
	PriorityInfo    Priority = "info"
	PriorityWarning Priority = "warning"
	PriorityDanger  Priority = "danger"
)

// Todo 个人待办事项
type Todo struct {
	ID        string     `gorm:"primaryKey;type:text" json:"id"`
	UserID    string     `gorm:"index;not null" json:"userId"`
	Content   string     `gorm:"size:500;not null" json:"content"`
	Completed bool       `gorm:"index;not null;default:false" json:"completed"`
	Priority  Priority   `gorm:"type:text;index;not null;default:info" json:"priority"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"createTime"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type TodoCreateRequest struct {
	Content  string     `json:"content" binding:"required,max=500"`
	Priority Priority   `json:"priority" binding:"omitempty,oneof=info warning danger"`
	Deadline *time.Time `json:"deadline"`
}

type TodoUpdateRequest struct {
	Content  *string    `json:"content" binding:"omitempty,max=500"`
	Priority *Priority  `json:"priority" binding:"omitempty,oneof=info warning danger"`
	Deadline *time.Time `json:"deadline"`
}

type TodoStatusRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}
