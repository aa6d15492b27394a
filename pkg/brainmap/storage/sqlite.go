package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/utils"
)

const DefaultDBFile = "brainmap.sqlite3"
const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// ReferenceRecord is one composite of the persisted reference snapshot.
// Coefficients holds the zstd compressed matrix, see EncodeMatrix.
type ReferenceRecord struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Position     int    `gorm:"uniqueIndex:idx_reference_position" json:"position"`
	Name         string `gorm:"index:idx_reference_name" json:"name"`
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	Coefficients []byte `json:"-"`
	CreatedAt    time.Time
}

// ClassificationRecord is one entry of the classification history.
type ClassificationRecord struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TestID         string    `gorm:"index:idx_test_id" json:"test_id"`
	Label          string    `gorm:"index:idx_label" json:"label"`
	MinMSE         float64   `json:"min_mse"`
	MatchedFrame   *int      `json:"matched_frame"`
	Confidence     float64   `json:"confidence"`
	Threshold      float64   `json:"threshold"`
	ReferenceCount int       `json:"reference_count"`
	MSEValues      []float64 `gorm:"serializer:json" json:"mse_values"`
	CreatedAt      time.Time `gorm:"index:idx_created_at" json:"created_at"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("EEG_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := utils.MakeDir(dir); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&ReferenceRecord{}, &ClassificationRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ReplaceReferences swaps the stored snapshot for records in one transaction.
func (c *DBClient) ReplaceReferences(records []ReferenceRecord) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ReferenceRecord{}).Error; err != nil {
			return fmt.Errorf("clearing references: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 50).Error; err != nil {
			return fmt.Errorf("batch insert references: %w", err)
		}
		return nil
	})
}

// ListReferences returns the stored snapshot ordered by position.
func (c *DBClient) ListReferences() ([]ReferenceRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []ReferenceRecord
	if err := c.DB.Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying references: %w", err)
	}
	return rows, nil
}

func (c *DBClient) CountReferences() (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var count int64
	if err := c.DB.Model(&ReferenceRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting references: %w", err)
	}
	return int(count), nil
}

// RecordClassification stores rec, assigning an ID when it has none.
func (c *DBClient) RecordClassification(rec *ClassificationRecord) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if rec.ID == "" {
		rec.ID = utils.GenerateUUID()
	}
	if err := c.DB.Create(rec).Error; err != nil {
		return "", fmt.Errorf("creating classification: %w", err)
	}
	return rec.ID, nil
}

func (c *DBClient) GetClassification(id string) (*ClassificationRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rec ClassificationRecord
	if err := c.DB.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("querying classification %s: %w", id, err)
	}
	return &rec, nil
}

// ListClassifications returns the newest records first. limit <= 0 returns
// all of them.
func (c *DBClient) ListClassifications(limit int) ([]ClassificationRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	q := c.DB.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []ClassificationRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying classifications: %w", err)
	}
	return rows, nil
}
