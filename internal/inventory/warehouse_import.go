package inventory

import (
	"fmt"
	"io"
	"strings"

	"smartstore-backend/internal/catalog"

	"github.com/xuri/excelize/v2"
)

// ImportRow is one product line of a warehouse XLSX sheet.
type ImportRow struct {
	Line              int // 1-based sheet row
	Name              string
	Model             string
	BrandName         string
	WarehouseCategory string
	StockCode         string
}

type importColumns struct {
	name, model, brand, category, stockCode int
}

// positional layout used when the sheet has no header row
var defaultColumns = importColumns{name: 0, model: 1, brand: 2, category: 3, stockCode: 4}

// header cells are compared after catalog.NormalizeText
var headerAliases = map[string][]string{
	"name":      {"name", "product", "product name", "ten san pham", "san pham", "ten hang"},
	"model":     {"model", "ma model", "dong may"},
	"brand":     {"brand", "brand name", "thuong hieu", "hang"},
	"category":  {"category", "warehouse category", "danh muc", "loai", "nhom hang"},
	"stockCode": {"stock code", "sku", "ma hang", "ma san pham"},
}

// ParseWarehouseSheet reads product rows from the first sheet of an XLSX file.
func ParseWarehouseSheet(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows), nil
}

func parseRows(rows [][]string) []ImportRow {
	if len(rows) == 0 {
		return nil
	}

	cols := defaultColumns
	start := 0
	if header, ok := detectHeader(rows[0]); ok {
		cols = header
		start = 1
	}

	out := make([]ImportRow, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, cols.name)
		if name == "" {
			continue
		}
		out = append(out, ImportRow{
			Line:              i + 1,
			Name:              name,
			Model:             cell(row, cols.model),
			BrandName:         cell(row, cols.brand),
			WarehouseCategory: cell(row, cols.category),
			StockCode:         cell(row, cols.stockCode),
		})
	}
	return out
}

func detectHeader(row []string) (importColumns, bool) {
	cols := importColumns{name: -1, model: -1, brand: -1, category: -1, stockCode: -1}
	for i, raw := range row {
		key := catalog.NormalizeText(raw)
		if key == "" {
			continue
		}
		for field, aliases := range headerAliases {
			if !containsString(aliases, key) {
				continue
			}
			switch field {
			case "name":
				cols.name = i
			case "model":
				cols.model = i
			case "brand":
				cols.brand = i
			case "category":
				cols.category = i
			case "stockCode":
				cols.stockCode = i
			}
		}
	}
	return cols, cols.name >= 0
}

// Classify resolves the row's category, the warehouse label is the fallback.
func (r ImportRow) Classify() catalog.Result {
	return catalog.Classify(catalog.ClassificationInput{
		Name:        r.Name,
		Model:       r.Model,
		BrandName:   r.BrandName,
		CurrentSlug: r.WarehouseCategory,
	})
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
