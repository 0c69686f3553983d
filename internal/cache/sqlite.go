package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

// CourseRow is one cached course document.
type CourseRow struct {
	ID        string         `gorm:"primaryKey"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (CourseRow) TableName() string { return "course_cache" }

type sqliteCache struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewSQLiteCache opens (or creates) the local cache database at path.
func NewSQLiteCache(log *logger.Logger, path string) (CourseCache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %s: %w", path, err)
	}
	if err := db.AutoMigrate(&CourseRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite cache: %w", err)
	}
	return &sqliteCache{
		db:  db,
		log: log.With("service", "SQLiteCourseCache"),
	}, nil
}

func (c *sqliteCache) Put(ctx context.Context, course *types.Course) error {
	if course == nil || course.ID == "" {
		return fmt.Errorf("course with id required")
	}
	payload, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("marshal course %s: %w", course.ID, err)
	}
	row := &CourseRow{
		ID:        course.ID,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: time.Now(),
	}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
}

func (c *sqliteCache) Get(ctx context.Context, id string) (*types.Course, error) {
	var row CourseRow
	err := c.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var course types.Course
	if err := json.Unmarshal(row.Payload, &course); err != nil {
		return nil, fmt.Errorf("parse cached course %s: %w", id, err)
	}
	return &course, nil
}
