package models

import (
	"strings"
	"time"
)

type Product struct {
	ID        uint   `gorm:"primaryKey"`
	BranchID  string `gorm:"size:64;not null;index;uniqueIndex:idx_branch_stock_code"`
	Branch    Branch
	Name      string `gorm:"size:200;not null"`
	Model     string `gorm:"size:100"`
	BrandName string `gorm:"size:100"`

	// nil means uncategorized
	CategorySlug *string `gorm:"size:32;index"`
	// free-text label from warehouse imports
	WarehouseCategory string `gorm:"size:100"`

	// nil when the product has no code, NULLs never collide in the unique index
	StockCode *string `gorm:"size:50;uniqueIndex:idx_branch_stock_code"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockCodeOf returns the trimmed code as a column value, nil when blank.
func StockCodeOf(code string) *string {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	return &code
}
