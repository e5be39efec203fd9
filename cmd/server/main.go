package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"smartstore-backend/internal/admin"
	"smartstore-backend/internal/audit"
	"smartstore-backend/internal/auth"
	"smartstore-backend/internal/branchctx"
	"smartstore-backend/internal/cache"
	"smartstore-backend/internal/config"
	"smartstore-backend/internal/database"
	"smartstore-backend/internal/inventory"
	"smartstore-backend/internal/logger"
	"smartstore-backend/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productListTTL = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	if err := database.Init(cfg, log); err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	store, err := newSessionStore(cfg, log)
	if err != nil {
		log.Fatal("session store init failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New()
	collector.Register(reg)

	listCache := cache.NewBranchCache[[]inventory.ProductResponse](productListTTL)
	stopSweeper := listCache.StartSweeper(context.Background(), productListTTL)
	defer stopSweeper()

	sessions := branchctx.NewManager(store, log)
	sessions.SetRecorder(collector)
	sessions.OnSwitch(listCache.OnBranchSwitch)
	sessions.OnSwitch(audit.BranchSwitchListener(log))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error("unexpected error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-global-admin", auth.RegisterGlobalAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg, sessions))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg), auth.BranchScope(sessions))

	protected.Get("/auth/me", auth.MeHandler(sessions))
	protected.Post("/auth/active-branch", auth.SwitchBranchHandler(sessions, auth.DBBranchLookup))
	protected.Post("/auth/logout", auth.LogoutHandler(sessions))

	// Catalog
	protected.Get("/catalog/categories", inventory.ListCategoriesHandler())
	protected.Post("/catalog/classify", inventory.ClassifyHandler(collector))

	// Products, scoped to the resolved branch
	protected.Get("/products", inventory.ListProductsHandler(listCache))
	catalogWriters := auth.RequireRole(
		branchctx.RoleGlobalAdmin,
		branchctx.RoleAdmin,
		branchctx.RoleBranchAdmin,
		branchctx.RoleWarehouseManager,
		branchctx.RoleWarehouseStaff,
		branchctx.RoleProductManager,
	)
	protected.Post("/products", catalogWriters, inventory.CreateProductHandler(collector, listCache))
	protected.Put("/products/:id", catalogWriters, inventory.UpdateProductHandler(collector, listCache))
	protected.Post("/products/import", catalogWriters, inventory.ImportProductsHandler(collector, listCache))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Global admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireGlobalAdmin())

	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeleteBranchHandler())
	adminRoutes.Post("/branches/:id/staff", admin.CreateBranchStaffHandler())
	adminRoutes.Get("/branches/:id/staff", admin.ListBranchStaffHandler())
	adminRoutes.Put("/users/:id/branches", admin.AssignUserBranchesHandler())
	adminRoutes.Put("/categories/:slug", inventory.UpdateCategoryHandler())

	log.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// newSessionStore picks Redis when REDIS_ADDR is set, process memory otherwise.
func newSessionStore(cfg *config.Config, log *zap.Logger) (branchctx.Store, error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, sessions are kept in memory")
		return branchctx.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	log.Info("session store ready", zap.String("redis", cfg.RedisAddr))
	return branchctx.NewRedisStore(client, cfg.SessionTTL), nil
}
