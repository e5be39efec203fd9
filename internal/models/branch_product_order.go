package models

// BranchProductOrder keeps the per-branch product order taken from the
// row order of the last warehouse XLSX import.
type BranchProductOrder struct {
	ID         uint   `gorm:"primaryKey"`
	BranchID   string `gorm:"size:64;not null;uniqueIndex:idx_branch_product"`
	ProductID  uint   `gorm:"not null;uniqueIndex:idx_branch_product"`
	Product    Product
	OrderIndex int `gorm:"not null"` // zero based row index
}
