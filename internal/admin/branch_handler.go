package admin

import (
	"fmt"
	"strings"

	"smartstore-backend/internal/branchctx"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type BranchResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateBranchRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"` // optional
}

type UpdateBranchRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AssignBranchesRequest struct {
	BranchIDs                []string `json:"branch_ids"`
	ActiveBranchID           *string  `json:"active_branch_id"`
	RequiresBranchAssignment *bool    `json:"requires_branch_assignment"`
}

type StaffResponse struct {
	ID                       uint     `json:"id"`
	Name                     string   `json:"name"`
	Email                    string   `json:"email"`
	Role                     string   `json:"role"`
	BranchIDs                []string `json:"branch_ids"`
	ActiveBranchID           *string  `json:"active_branch_id"`
	RequiresBranchAssignment bool     `json:"requires_branch_assignment"`
	CreatedAt                string   `json:"created_at"`
}

func toBranchResponse(b *models.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Code:      b.Code,
		Name:      b.Name,
		Address:   b.Address,
		Phone:     b.Phone,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toStaffResponse(u *models.User) StaffResponse {
	ids := make([]string, 0, len(u.Branches))
	for _, b := range u.Branches {
		ids = append(ids, b.ID)
	}
	return StaffResponse{
		ID:                       u.ID,
		Name:                     u.Name,
		Email:                    u.Email,
		Role:                     u.Role,
		BranchIDs:                ids,
		ActiveBranchID:           u.ActiveBranchID,
		RequiresBranchAssignment: u.RequiresBranchAssignment,
		CreatedAt:                u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// BRANCH CRUD
// ----------------------------------------

func CreateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Code = strings.ToUpper(strings.TrimSpace(body.Code))
		if body.Name == "" || body.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Branch code and name are required")
		}

		branch := models.Branch{
			Code:    body.Code,
			Name:    body.Name,
			Address: body.Address,
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Create(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create branch")
		}

		return c.Status(fiber.StatusCreated).JSON(toBranchResponse(&branch))
	}
}

func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branches []models.Branch
		if err := database.DB.Order("code asc").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list branches")
		}

		res := make([]BranchResponse, 0, len(branches))
		for i := range branches {
			res = append(res, toBranchResponse(&branches[i]))
		}
		return c.JSON(res)
	}
}

func GetBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Branch not found")
		}
		return c.JSON(toBranchResponse(&branch))
	}
}

func UpdateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Branch not found")
		}

		var body UpdateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Branch name cannot be empty")
			}
			branch.Name = name
		}
		if body.Address != nil {
			branch.Address = *body.Address
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update branch")
		}
		return c.JSON(toBranchResponse(&branch))
	}
}

func DeleteBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.Product{}).Where("branch_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Branch still has products")
		}

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Branch not found")
		}
		if err := database.DB.Transaction(func(tx *gorm.DB) error {
			return deleteBranch(tx, &branch)
		}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete branch")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// deleteBranch removes the branch and every user reference to it, so staff
// left without branches resolve to no branch instead of a deleted one.
func deleteBranch(tx *gorm.DB, branch *models.Branch) error {
	if err := tx.Model(branch).Association("Users").Clear(); err != nil {
		return fmt.Errorf("detach staff: %w", err)
	}
	err := tx.Model(&models.User{}).
		Where("active_branch_id = ?", branch.ID).
		Update("active_branch_id", nil).Error
	if err != nil {
		return fmt.Errorf("clear active branch: %w", err)
	}
	err = tx.Model(&models.User{}).
		Where("store_location IN ?", []string{branch.ID, branch.Code}).
		Update("store_location", nil).Error
	if err != nil {
		return fmt.Errorf("clear store location: %w", err)
	}
	if err := tx.Delete(branch).Error; err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	return nil
}

// ----------------------------------------
// BRANCH STAFF
// ----------------------------------------

// POST /api/admin/branches/:id/staff
func CreateBranchStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Branch not found")
		}

		var body CreateStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		body.Role = strings.ToUpper(strings.TrimSpace(body.Role))
		if body.Role == "" {
			body.Role = branchctx.RoleBranchAdmin
		}

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}
		if !branchctx.IsValidRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown role")
		}
		if !branchctx.IsBranchScopedStaff(branchctx.UserContext{Role: body.Role}, branchctx.AuthorizationContext{}) {
			return fiber.NewError(fiber.StatusBadRequest, "Role is not a branch staff role")
		}

		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:           body.Name,
			Email:          body.Email,
			PasswordHash:   string(hash),
			Role:           body.Role,
			ActiveBranchID: &branch.ID,
			Branches:       []models.Branch{branch},
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create staff user")
		}

		return c.Status(fiber.StatusCreated).JSON(toStaffResponse(&user))
	}
}

// GET /api/admin/branches/:id/staff
func ListBranchStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Branch not found")
		}

		var users []models.User
		err := database.DB.Preload("Branches").
			Joins("JOIN user_branches ub ON ub.user_id = users.id").
			Where("ub.branch_id = ?", branch.ID).
			Order("users.created_at DESC").
			Find(&users).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list staff")
		}

		res := make([]StaffResponse, 0, len(users))
		for i := range users {
			res = append(res, toStaffResponse(&users[i]))
		}
		return c.JSON(res)
	}
}

// PUT /api/admin/users/:id/branches
// Replaces the user's allowed branches; the active branch must be one of them.
// Open sessions pick the change up on their next /auth/me refresh.
func AssignUserBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.Preload("Branches").First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		var body AssignBranchesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		ids := branchctx.NormalizeBranchIDs(body.BranchIDs)
		var branches []models.Branch
		if len(ids) > 0 {
			if err := database.DB.Where("id IN ?", ids).Find(&branches).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not load branches")
			}
			if len(branches) != len(ids) {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown branch id in branch_ids")
			}
		}

		active, err := pickActiveBranch(ids, user.ActiveBranchID, body.ActiveBranchID)
		if err != nil {
			return err
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&user).Association("Branches").Replace(branches); err != nil {
				return err
			}
			user.ActiveBranchID = active
			if body.RequiresBranchAssignment != nil {
				user.RequiresBranchAssignment = *body.RequiresBranchAssignment
			}
			return tx.Save(&user).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not assign branches")
		}

		user.Branches = branches
		return c.JSON(toStaffResponse(&user))
	}
}

// pickActiveBranch keeps the server-side active branch inside the allowed
// list: an explicit request wins, then the current value, then the first
// allowed branch.
func pickActiveBranch(allowed []string, current, requested *string) (*string, error) {
	if requested != nil {
		id := branchctx.NormalizeBranchID(*requested)
		if id == "" {
			return nil, nil
		}
		if len(allowed) > 0 && !containsID(allowed, id) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "active_branch_id must be one of branch_ids")
		}
		return &id, nil
	}
	if current != nil && (len(allowed) == 0 || containsID(allowed, *current)) {
		id := *current
		return &id, nil
	}
	if len(allowed) > 0 {
		id := allowed[0]
		return &id, nil
	}
	return nil, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
