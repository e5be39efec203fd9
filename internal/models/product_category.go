package models

import "time"

// ProductCategory stores the display name of a canonical category slug.
type ProductCategory struct {
	Slug        string `gorm:"primaryKey;size:32"`
	DisplayName string `gorm:"size:100;not null"`
	SortOrder   int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
