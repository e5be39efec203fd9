package inventory

import (
	"strconv"
	"strings"

	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/cache"
	"smartstore-backend/internal/catalog"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ProductListCache caches product lists per session and branch.
type ProductListCache = cache.BranchCache[[]ProductResponse]

type ProductResponse struct {
	ID                uint    `json:"id"`
	BranchID          string  `json:"branch_id"`
	Name              string  `json:"name"`
	Model             string  `json:"model"`
	BrandName         string  `json:"brand_name"`
	CategorySlug      *string `json:"category_slug"`
	WarehouseCategory string  `json:"warehouse_category"`
	StockCode         *string `json:"stock_code"`
}

type CreateProductRequest struct {
	Name              string `json:"name"`
	Model             string `json:"model"`
	BrandName         string `json:"brand_name"`
	WarehouseCategory string `json:"warehouse_category"`
	CategorySlug      string `json:"category_slug"` // hint used when no keyword matches
	StockCode         string `json:"stock_code"`    // optional
}

type UpdateProductRequest struct {
	Name              *string `json:"name"`
	Model             *string `json:"model"`
	BrandName         *string `json:"brand_name"`
	WarehouseCategory *string `json:"warehouse_category"`
	CategorySlug      *string `json:"category_slug"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		BranchID:          p.BranchID,
		Name:              p.Name,
		Model:             p.Model,
		BrandName:         p.BrandName,
		CategorySlug:      p.CategorySlug,
		WarehouseCategory: p.WarehouseCategory,
		StockCode:         p.StockCode,
	}
}

// classifyProduct sets the product's slug from its descriptors. hint is used
// when neither keywords nor the warehouse label resolve.
func classifyProduct(obs Observer, p *models.Product, hint string) catalog.Result {
	res := catalog.Classify(catalog.ClassificationInput{
		Name:        p.Name,
		Model:       p.Model,
		BrandName:   p.BrandName,
		CurrentSlug: p.WarehouseCategory,
	})
	if res.Source == catalog.SourceNone && strings.TrimSpace(hint) != "" {
		if slug, ok := catalog.NormalizeWarehouseCategory(hint); ok {
			res = catalog.Result{Slug: slug, Source: catalog.SourceFallback}
		}
	}
	obs.ObserveClassification(res)

	p.CategorySlug = slugPtr(res)
	return res
}

// GET /api/products?category=tablet
func ListProductsHandler(listCache *ProductListCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := auth.ActiveBranch(c)
		if err != nil {
			return err
		}

		category := strings.TrimSpace(c.Query("category"))
		cacheKey := "products:" + category
		sessionID := auth.SessionID(c)
		if cached, ok := listCache.Get(sessionID, branchID, cacheKey); ok {
			return c.JSON(cached)
		}

		dbq := database.DB.Model(&models.Product{}).Where("branch_id = ?", branchID)
		switch category {
		case "":
		case "uncategorized":
			dbq = dbq.Where("category_slug IS NULL")
		default:
			dbq = dbq.Where("category_slug = ?", category)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		listCache.Set(sessionID, branchID, cacheKey, res)
		return c.JSON(res)
	}
}

// POST /api/products
func CreateProductHandler(obs Observer, listCache *ProductListCache) fiber.Handler {
	obs = observerOrNop(obs)
	return func(c *fiber.Ctx) error {
		branchID, err := auth.ActiveBranch(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		p := models.Product{
			BranchID:          branchID,
			Name:              strings.TrimSpace(body.Name),
			Model:             strings.TrimSpace(body.Model),
			BrandName:         strings.TrimSpace(body.BrandName),
			WarehouseCategory: strings.TrimSpace(body.WarehouseCategory),
			StockCode:         models.StockCodeOf(body.StockCode),
		}
		if p.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		if p.StockCode != nil {
			var count int64
			database.DB.Model(&models.Product{}).
				Where("branch_id = ? AND stock_code = ?", branchID, *p.StockCode).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Stock code already in use")
			}
		}

		classifyProduct(obs, &p, body.CategorySlug)

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}
		listCache.PurgeBranch(branchID)

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		_ = audit.WriteLog(audit.LogOptions{
			BranchID:   branchID,
			UserID:     userID,
			EntityType: "product",
			EntityID:   strconv.FormatUint(uint64(p.ID), 10),
			Action:     models.AuditActionCreate,
			After:      toProductResponse(&p),
		})

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p))
	}
}

// PUT /api/products/:id
func UpdateProductHandler(obs Observer, listCache *ProductListCache) fiber.Handler {
	obs = observerOrNop(obs)
	return func(c *fiber.Ctx) error {
		branchID, err := auth.ActiveBranch(c)
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.DB.First(&p, "id = ? AND branch_id = ?", c.Params("id"), branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		before := toProductResponse(&p)

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			p.Name = name
		}
		if body.Model != nil {
			p.Model = strings.TrimSpace(*body.Model)
		}
		if body.BrandName != nil {
			p.BrandName = strings.TrimSpace(*body.BrandName)
		}
		if body.WarehouseCategory != nil {
			p.WarehouseCategory = strings.TrimSpace(*body.WarehouseCategory)
		}

		hint := ""
		if body.CategorySlug != nil {
			hint = *body.CategorySlug
		} else if p.CategorySlug != nil {
			hint = *p.CategorySlug
		}
		classifyProduct(obs, &p, hint)

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}
		listCache.PurgeBranch(branchID)

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		_ = audit.WriteLog(audit.LogOptions{
			BranchID:   branchID,
			UserID:     userID,
			EntityType: "product",
			EntityID:   strconv.FormatUint(uint64(p.ID), 10),
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toProductResponse(&p),
		})

		return c.JSON(toProductResponse(&p))
	}
}
