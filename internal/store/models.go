package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ThreadRecord remembers which platform opened a remote thread.
type ThreadRecord struct {
	ThreadID  string    `gorm:"primaryKey" json:"thread_id"`
	Platform  string    `gorm:"index" json:"platform"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// LeadRecord is a lead captured by the create_lead tool.
type LeadRecord struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ThreadID  string    `gorm:"index" json:"thread_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Email     string    `gorm:"index" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AnswerRecord holds one survey; Answers is a JSON object with every survey key present.
type AnswerRecord struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	ThreadID  string         `gorm:"index" json:"thread_id"`
	Answers   datatypes.JSON `gorm:"type:json" json:"answers"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (l *LeadRecord) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (a *AnswerRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if len(a.Answers) == 0 {
		a.Answers = datatypes.JSON([]byte("{}"))
	}
	return nil
}
