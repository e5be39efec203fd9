package inventory

import (
	"strings"

	"smartstore-backend/internal/catalog"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CategoryOption struct {
	Slug        string   `json:"slug"`
	DisplayName string   `json:"display_name"`
	Labels      []string `json:"labels"`
}

type UpdateCategoryRequest struct {
	DisplayName *string `json:"display_name"`
}

type ClassifyRequest struct {
	Name        string `json:"name"`
	Model       string `json:"model"`
	BrandName   string `json:"brand_name"`
	CurrentSlug string `json:"current_slug"`
}

type ClassifyResponse struct {
	Slug   *string `json:"slug"`
	Source string  `json:"source"`
}

// BuildCategoryOptions lists every slug in filter order with its labels.
// displayNames overrides the default display name per slug.
func BuildCategoryOptions(displayNames map[string]string) []CategoryOption {
	order := catalog.SlugOrder()
	options := make([]CategoryOption, 0, len(order))
	for _, slug := range order {
		displayName := strings.TrimSpace(displayNames[string(slug)])
		if displayName == "" {
			if defaults := catalog.DefaultLabels(slug); len(defaults) > 0 {
				displayName = defaults[0]
			} else {
				displayName = string(slug)
			}
		}
		options = append(options, CategoryOption{
			Slug:        string(slug),
			DisplayName: displayName,
			Labels:      catalog.WarehouseCategoryLabels(string(slug), displayName),
		})
	}
	return options
}

// GET /api/catalog/categories
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.ProductCategory
		if err := database.DB.Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list categories")
		}

		displayNames := make(map[string]string, len(categories))
		for _, cat := range categories {
			displayNames[cat.Slug] = cat.DisplayName
		}
		return c.JSON(BuildCategoryOptions(displayNames))
	}
}

// PUT /api/admin/categories/:slug
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := catalog.CategorySlug(c.Params("slug"))
		if !slug.IsKnown() {
			return fiber.NewError(fiber.StatusNotFound, "Unknown category")
		}

		var body UpdateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.DisplayName == nil || strings.TrimSpace(*body.DisplayName) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "display_name is required")
		}

		var cat models.ProductCategory
		if err := database.DB.First(&cat, "slug = ?", string(slug)).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}
		cat.DisplayName = strings.TrimSpace(*body.DisplayName)

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update category")
		}

		return c.JSON(CategoryOption{
			Slug:        cat.Slug,
			DisplayName: cat.DisplayName,
			Labels:      catalog.WarehouseCategoryLabels(cat.Slug, cat.DisplayName),
		})
	}
}

// POST /api/catalog/classify
func ClassifyHandler(obs Observer) fiber.Handler {
	obs = observerOrNop(obs)
	return func(c *fiber.Ctx) error {
		var body ClassifyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		res := catalog.Classify(catalog.ClassificationInput{
			Name:        body.Name,
			Model:       body.Model,
			BrandName:   body.BrandName,
			CurrentSlug: body.CurrentSlug,
		})
		obs.ObserveClassification(res)

		return c.JSON(ClassifyResponse{
			Slug:   slugPtr(res),
			Source: string(res.Source),
		})
	}
}

func slugPtr(res catalog.Result) *string {
	if res.Source == catalog.SourceNone {
		return nil
	}
	s := string(res.Slug)
	return &s
}
