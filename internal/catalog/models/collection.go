package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection is a named group of files backed by a directory under the blob
// root. FileCount and TotalFileSize are caches recomputed from the files
// table, never independently authoritative.
type Collection struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	Name          string `gorm:"size:255;not null;uniqueIndex"`
	FileCount     int64  `gorm:"not null;default:0"`
	TotalFileSize int64  `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`

	Files []File `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
}

func (Collection) TableName() string {
	return "collections"
}

// BeforeCreate assigns the primary key; done in the hook so sqlite test
// databases behave the same as postgres.
func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
