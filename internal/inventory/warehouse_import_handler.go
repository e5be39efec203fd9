package inventory

import (
	"errors"
	"fmt"
	"strings"

	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ImportResponse struct {
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	Skipped       int      `json:"skipped"`
	Uncategorized []string `json:"uncategorized"`
}

// POST /api/products/import (multipart, field "file")
// Rows are matched by stock code, then by name, inside the active branch.
// The sheet's row order becomes the branch's product order.
func ImportProductsHandler(obs Observer, listCache *ProductListCache) fiber.Handler {
	obs = observerOrNop(obs)
	return func(c *fiber.Ctx) error {
		branchID, err := auth.ActiveBranch(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read upload: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not open upload")
		}
		defer file.Close()

		rows, err := ParseWarehouseSheet(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read spreadsheet: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Spreadsheet has no product rows")
		}

		res := ImportResponse{Uncategorized: make([]string, 0)}
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("branch_id = ?", branchID).Delete(&models.BranchProductOrder{}).Error; err != nil {
				return fmt.Errorf("clear product order: %w", err)
			}

			// later rows naming an already imported product are skipped unwritten
			seen := make(map[uint]bool, len(rows))
			orderIndex := 0
			for _, row := range rows {
				p, created, err := findImportTarget(tx, branchID, row)
				if err != nil {
					return fmt.Errorf("row %d: %w", row.Line, err)
				}
				if !created && seen[p.ID] {
					res.Skipped++
					obs.ImportRow("skipped")
					continue
				}
				if err := applyImportRow(tx, obs, p, created, row); err != nil {
					return fmt.Errorf("row %d: %w", row.Line, err)
				}
				seen[p.ID] = true

				if created {
					res.Created++
					obs.ImportRow("created")
				} else {
					res.Updated++
					obs.ImportRow("updated")
				}
				if p.CategorySlug == nil {
					res.Uncategorized = append(res.Uncategorized, p.Name)
				}

				order := models.BranchProductOrder{BranchID: branchID, ProductID: p.ID, OrderIndex: orderIndex}
				if err := tx.Create(&order).Error; err != nil {
					return fmt.Errorf("save product order: %w", err)
				}
				orderIndex++
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Import failed: "+err.Error())
		}
		listCache.PurgeBranch(branchID)

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		_ = audit.WriteLog(audit.LogOptions{
			BranchID:    branchID,
			UserID:      userID,
			EntityType:  "product_import",
			EntityID:    fileHeader.Filename,
			Action:      models.AuditActionImport,
			Description: fmt.Sprintf("%d created, %d updated, %d skipped", res.Created, res.Updated, res.Skipped),
			After:       res,
		})

		return c.JSON(res)
	}
}

// findImportTarget loads the product a row refers to. A new unsaved product
// is returned when nothing matches.
func findImportTarget(tx *gorm.DB, branchID string, row ImportRow) (*models.Product, bool, error) {
	var p models.Product
	var err error
	if code := models.StockCodeOf(row.StockCode); code != nil {
		err = tx.Where("branch_id = ? AND stock_code = ?", branchID, *code).First(&p).Error
	} else {
		err = tx.Where("branch_id = ? AND LOWER(name) = LOWER(?)", branchID, row.Name).First(&p).Error
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &models.Product{BranchID: branchID, StockCode: models.StockCodeOf(row.StockCode)}, true, nil
	case err != nil:
		return nil, false, err
	}
	return &p, false, nil
}

// applyImportRow copies the row onto p, classifies it and saves it.
func applyImportRow(tx *gorm.DB, obs Observer, p *models.Product, created bool, row ImportRow) error {
	p.Name = row.Name
	p.Model = row.Model
	p.BrandName = row.BrandName
	if row.WarehouseCategory != "" {
		p.WarehouseCategory = row.WarehouseCategory
	}

	hint := ""
	if p.CategorySlug != nil {
		hint = *p.CategorySlug
	}
	classifyProduct(obs, p, hint)

	if created {
		return tx.Create(p).Error
	}
	return tx.Save(p).Error
}
