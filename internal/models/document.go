package models

import "time"

// Document is stored-file metadata; the payload lives in the object store.
type Document struct {
	BaseModel

	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	FilePath   string    `gorm:"type:text;not null" json:"file_path"`
	FileType   string    `gorm:"type:varchar(128);not null" json:"file_type"`
	FileSize   int64     `json:"file_size"`
	ProjectID  *string   `gorm:"type:uuid;index" json:"project_id"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`
}
