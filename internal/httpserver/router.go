package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	authmw "github.com/gldesigns/leather-shop/internal/middleware/auth"
	pkgdb "github.com/gldesigns/leather-shop/pkg/db"
)

const uploadBodyLimit = "5M"

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
	UploadDir      string
	DB             *gorm.DB
	SearchEnabled  bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "leather shop API is running"})
	})
	e.GET("/check-db", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "database is unreachable")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "database connection ok"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.Static("/uploads", d.UploadDir)

	mw := authmw.New(d.JWTSecret)
	adminOnly := []echo.MiddlewareFunc{mw.RequireAuth, mw.RequireRoles("admin")}
	bodyLimit := echomw.BodyLimit(uploadBodyLimit)

	api := e.Group("/api")
	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	if d.SearchEnabled {
		products.GET("/search", d.CatalogHandler.SearchProducts)
	}
	products.GET("/:id", d.CatalogHandler.GetProduct, mw.RequireAuth)

	products.POST("", d.CatalogHandler.CreateProduct, append(adminOnly, bodyLimit)...)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, adminOnly...)
	products.PATCH("/:id/image", d.CatalogHandler.UpdateProductImage, append(adminOnly, bodyLimit)...)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, adminOnly...)
}
