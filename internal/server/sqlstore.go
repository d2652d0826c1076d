package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// documentRow is the single row holding the document.
type documentRow struct {
	Stamp string `gorm:"column:updated_at_stamp;not null"`
	Body  []byte `gorm:"not null"`
	ID    uint   `gorm:"primaryKey"`
}

func (documentRow) TableName() string { return "sync_documents" }

const documentRowID = 1

// SQLStore keeps the document in a SQLite database.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (and migrates) the database at path.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return NewSQLStoreWithDB(db)
}

// NewSQLStoreWithDB uses an existing connection.
func NewSQLStoreWithDB(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate sync store: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Load reads the document row.
func (s *SQLStore) Load(ctx context.Context) (*Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).First(&row, documentRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(row.Body, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Save upserts the document row.
func (s *SQLStore) Save(ctx context.Context, doc *Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	row := documentRow{ID: documentRowID, Stamp: doc.UpdatedAt, Body: body}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
