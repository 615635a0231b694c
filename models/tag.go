package models

type Tag struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
