package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is a catalog row for one stored file. FilePath is the store-relative
// forward-slash path and the join key to the blob store; a nil CollectionID
// means the file lives directly under the blob root.
type File struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	FileName     string  `gorm:"size:255;not null"`
	FilePath     string  `gorm:"size:500;not null;uniqueIndex"`
	FileSize     int64   `gorm:"not null;default:0"`
	MimeType     string  `gorm:"size:100"`
	CollectionID *string `gorm:"type:uuid;index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (File) TableName() string {
	return "files"
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// Migrate runs auto migration for the catalog tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Collection{}, &File{})
}
