package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/auth"
	orderControllers "github.com/gunalchandran/grocery-backend/controllers/order"
	"github.com/gunalchandran/grocery-backend/middleware"
	"github.com/gunalchandran/grocery-backend/services"
	"github.com/gunalchandran/grocery-backend/store"
)

// Deps is everything the route handlers need.
type Deps struct {
	Store       store.Store
	Catalog     *services.Catalog
	Cart        *services.Cart
	Orders      *services.Orders
	Accounts    *services.Accounts
	Tokens      *auth.TokenIssuer
	AdminAPIKey string
	Hub         *orderControllers.Hub
	Latency     *middleware.LatencyRecorder
	Logger      *slog.Logger

	UploadsDir  string
	ProfilesDir string
	// MaxUploadBytes bounds the multipart memory of a request.
	MaxUploadBytes int64
	Started        time.Time
}

// NewRouter builds the engine with logging, latency recording, CORS and
// static file serving, then registers every route.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Latency == nil {
		d.Latency = middleware.NewLatencyRecorder()
	}
	if d.Started.IsZero() {
		d.Started = time.Now()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger), d.Latency.Middleware())
	if d.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = d.MaxUploadBytes
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	// Serve uploaded images
	if d.UploadsDir != "" {
		r.Static("/uploads", d.UploadsDir)
	}
	if d.ProfilesDir != "" {
		r.Static("/static/profiles", d.ProfilesDir)
	}

	SetupRoutes(r, d)
	return r
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	// 1️⃣ Public routes (no middleware)
	SetupAuthRoutes(r, d)

	// 2️⃣ Customer routes (JWT-protected)
	SetupUserRoutes(r, d)

	// 3️⃣ Order routes (JWT-protected, some admin only)
	SetupOrderRoutes(r, d)

	// 4️⃣ Admin routes (admin JWT or API key)
	SetupAdminRoutes(r, d)
}
