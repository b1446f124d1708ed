package scores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hersh/blitztris/internal/protocol"
)

type scoreRow struct {
	ID    string `gorm:"primaryKey;size:36"`
	Name  string `gorm:"not null"`
	Score int    `gorm:"index:idx_scores_score,sort:desc"`
	Level int
	Date  time.Time
}

func (scoreRow) TableName() string { return "scores" }

func (r scoreRow) record() protocol.ScoreRecord {
	return protocol.ScoreRecord{ID: r.ID, Name: r.Name, Score: r.Score, Level: r.Level, Date: r.Date}
}

// SQLStore implements Store on Postgres through gorm.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens dsn and migrates the scores table.
func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.AutoMigrate(&scoreRow{}); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Insert(ctx context.Context, rec protocol.ScoreRecord) (protocol.ScoreRecord, error) {
	row := scoreRow{
		ID:    uuid.NewString(),
		Name:  rec.Name,
		Score: rec.Score,
		Level: rec.Level,
		Date:  rec.Date,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return protocol.ScoreRecord{}, err
	}
	return row.record(), nil
}

func (s *SQLStore) List(ctx context.Context) ([]protocol.ScoreRecord, error) {
	var rows []scoreRow
	if err := s.db.WithContext(ctx).Order("score desc, date asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	recs := make([]protocol.ScoreRecord, len(rows))
	for i, r := range rows {
		recs[i] = r.record()
	}
	return recs, nil
}

func (s *SQLStore) Rename(ctx context.Context, id, name string) error {
	res := s.db.WithContext(ctx).Model(&scoreRow{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
