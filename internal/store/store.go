// Package store persists thread records, leads and survey answers in SQLite via gorm.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/petasbytes/support-bot/tools"
)

// ErrThreadNotFound is returned by Thread when no record exists.
var ErrThreadNotFound = errors.New("store: thread not found")

type Store struct {
	DB *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&ThreadRecord{}, &LeadRecord{}, &AnswerRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordThread stores the (thread, platform) tuple. Re-recording a thread updates its platform.
func (s *Store) RecordThread(ctx context.Context, threadID, platform string) error {
	rec := ThreadRecord{ThreadID: threadID, Platform: platform}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "thread_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform"}),
	}).Create(&rec).Error
}

// Thread returns the stored record for threadID.
func (s *Store) Thread(ctx context.Context, threadID string) (*ThreadRecord, error) {
	var rec ThreadRecord
	err := s.DB.WithContext(ctx).First(&rec, "thread_id = ?", threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LeadResult is handed back to the assistant after a lead is stored.
type LeadResult struct {
	Status string `json:"status"`
	LeadID string `json:"lead_id"`
}

func (s *Store) CreateLead(ctx context.Context, lead tools.Lead) (any, error) {
	rec := LeadRecord{
		ThreadID: lead.ThreadID,
		Name:     lead.Name,
		Phone:    lead.Phone,
		Address:  lead.Address,
		Email:    lead.Email,
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return LeadResult{Status: "created", LeadID: rec.ID}, nil
}

// Leads returns the leads captured on a thread, oldest first.
func (s *Store) Leads(ctx context.Context, threadID string) ([]LeadRecord, error) {
	var out []LeadRecord
	err := s.DB.WithContext(ctx).Where("thread_id = ?", threadID).Order("created_at ASC").Find(&out).Error
	return out, err
}

// AnswersResult is handed back to the assistant after a survey is stored.
type AnswersResult struct {
	Status   string `json:"status"`
	AnswerID string `json:"answer_id"`
}

func (s *Store) SaveAnswers(ctx context.Context, threadID string, answers tools.Answers) (any, error) {
	b, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	rec := AnswerRecord{ThreadID: threadID, Answers: datatypes.JSON(b)}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return AnswersResult{Status: "saved", AnswerID: rec.ID}, nil
}

// Answers returns the surveys stored for a thread, decoded, oldest first.
func (s *Store) Answers(ctx context.Context, threadID string) ([]tools.Answers, error) {
	var recs []AnswerRecord
	if err := s.DB.WithContext(ctx).Where("thread_id = ?", threadID).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]tools.Answers, 0, len(recs))
	for _, r := range recs {
		var a tools.Answers
		if err := json.Unmarshal(r.Answers, &a); err != nil {
			return nil, fmt.Errorf("decode answers %s: %w", r.ID, err)
		}
		out = append(out, a)
	}
	return out, nil
}
