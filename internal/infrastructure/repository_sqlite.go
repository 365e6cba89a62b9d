package infrastructure

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/fetchbot/internal/domain"
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (or creates) the history database.
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Request{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Record stores a terminal request. Save upserts by primary key, so
// re-recording after a state change is safe.
func (r *SQLiteHistoryRepository) Record(request *domain.Request) error {
	return r.db.Save(request).Error
}

// Recent returns the most recent requests, newest first.
func (r *SQLiteHistoryRepository) Recent(limit int) ([]*domain.Request, error) {
	var requests []*domain.Request
	err := r.db.Order("created_at DESC").Limit(limit).Find(&requests).Error
	return requests, err
}

// Stats aggregates outcomes across all recorded requests.
func (r *SQLiteHistoryRepository) Stats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{ByFailure: make(map[string]int64)}

	if err := r.db.Model(&domain.Request{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&domain.Request{}).
		Where("state = ?", domain.StateCleanedUp).
		Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&domain.Request{}).
		Where("state = ?", domain.StateFailed).
		Count(&stats.Failed).Error; err != nil {
		return nil, err
	}

	rows, err := r.db.Model(&domain.Request{}).
		Select("failure_class, count(*) as n").
		Where("state = ?", domain.StateFailed).
		Group("failure_class").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var class string
		var n int64
		if err := rows.Scan(&class, &n); err != nil {
			return nil, err
		}
		stats.ByFailure[class] = n
	}

	return stats, rows.Err()
}

// Close closes the underlying database connection.
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
