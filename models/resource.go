package models

import "github.com/google/uuid"

type Resource struct {
	Base
	Title            string    `gorm:"not null;index" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	OriginalFilename string    `gorm:"not null" json:"filename"`
	ObjectName       string    `gorm:"not null" json:"-"`
	Subject          string    `gorm:"index" json:"subject"`
	Semester         string    `gorm:"index" json:"semester"`
	UploaderID       uuid.UUID `gorm:"type:uuid;not null;index" json:"uploader_id"`
	SizeBytes        int64     `json:"size_bytes"`
	DownloadCount    int64     `gorm:"not null;default:0" json:"download_count"`
	AverageRating    float64   `gorm:"not null;default:0" json:"average_rating"`

	Uploader User  `gorm:"foreignKey:UploaderID" json:"-"`
	Tags     []Tag `gorm:"many2many:resource_tags" json:"tags,omitempty"`
}
