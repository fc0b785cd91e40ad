package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/estoque-vet/internal/application/auth"
	"github.com/jhoicas/estoque-vet/internal/application/dto"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	"github.com/jhoicas/estoque-vet/internal/application/report"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	inv "github.com/jhoicas/estoque-vet/internal/domain/inventory"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// BodyLimit tope del body; deja margen sobre el tamaño máximo de un CSV.
const BodyLimit = 6 * 1024 * 1024

// MetricsExporter middleware de métricas HTTP y handler de /metrics.
type MetricsExporter interface {
	Middleware() fiber.Handler
	Handler() fiber.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog     *inv.Catalog
	ProductUC   *inventory.ProductUseCase
	TransferUC  *inventory.TransferUseCase
	ImportUC    *inventory.ImportUseCase
	AuthUC      *auth.UseCase
	ReportUC    *report.UseCase
	ReportPDF   ReportRenderer
	Activity    ActivityReader
	JWTSecret   string
	StoreDriver string
	Logger      *logger.Logger
	Metrics     MetricsExporter // opcional
	// LoginRateLimit intentos de login por minuto e IP; 0 desactiva el límite.
	LoginRateLimit int
}

// NewApp crea la aplicación fiber con el manejo de errores de la API.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: fiberErrorHandler,
		BodyLimit:    BodyLimit,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(recover.New())
	app.Use(RequestLogger(deps.Logger))
	app.Use(cors.New())
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Store: deps.StoreDriver})
	})

	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	if deps.LoginRateLimit > 0 {
		authGroup.Post("/login", limiter.New(limiter.Config{
			Max:        deps.LoginRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "TOO_MANY_REQUESTS", Message: "demasiados intentos de login"})
			},
		}), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)

	productHandler := NewProductHandler(deps.Catalog, deps.ProductUC)
	protected.Get("/locations", productHandler.Locations)
	locations := protected.Group("/locations/:location")
	locations.Get("/products", productHandler.List)
	locations.Post("/products", productHandler.Create)
	locations.Get("/products/:id", productHandler.GetByID)
	locations.Put("/products/:id", productHandler.Update)
	locations.Delete("/products/:id", productHandler.Delete)
	locations.Get("/summary", productHandler.Summary)

	transferHandler := NewTransferHandler(deps.TransferUC)
	protected.Post("/transfers", transferHandler.Transfer)

	importHandler := NewImportHandler(deps.ImportUC)
	protected.Post("/imports/preview", importHandler.Preview)
	protected.Post("/imports", importHandler.Import)

	activityHandler := NewActivityHandler(deps.Activity, deps.Catalog)
	protected.Get("/activity", activityHandler.List)

	reportHandler := NewReportHandler(deps.ReportUC, deps.ReportPDF)
	protected.Get("/reports/general.pdf", reportHandler.PDF)
	protected.Get("/reports/general.csv", reportHandler.CSV)
	protected.Get("/reports/general", reportHandler.General)
}
