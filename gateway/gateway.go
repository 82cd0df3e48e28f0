package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/admin"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/order"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/storefront"
)

const sessionHeader = "X-Session-ID"

var errUnknownProduct = errors.New("unknown product")

// NotificationHistory answers which notifications were sent for an order.
type NotificationHistory interface {
	History(orderID string) ([]admin.Notification, error)
}

// AuditTrail answers the recorded lifecycle events of an order.
type AuditTrail interface {
	AuditTrail(ctx context.Context, orderID string, limit int64) ([]*repository.AuditLog, error)
}

type Gateway struct {
	config        *config.Config
	logger        *zap.Logger
	router        *gin.Engine
	server        *http.Server
	catalog       *catalog.Catalog
	sessions      *storefront.Registry
	checkout      *storefront.Checkout
	admin         *admin.Controller
	notifications NotificationHistory
	audit         AuditTrail
}

func NewGateway(
	cfg *config.Config,
	logger *zap.Logger,
	cat *catalog.Catalog,
	sessions *storefront.Registry,
	co *storefront.Checkout,
	controller *admin.Controller,
	notifications NotificationHistory,
	audit AuditTrail,
) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Gateway{
		config:        cfg,
		logger:        logger,
		router:        router,
		catalog:       cat,
		sessions:      sessions,
		checkout:      co,
		admin:         controller,
		notifications: notifications,
		audit:         audit,
	}
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := g.router.Group("/api/v1")
	{
		v1.POST("/sessions", g.createSession)
		v1.GET("/products", g.listProducts)
		v1.GET("/countries", g.listCountries)

		cart := v1.Group("/cart", g.requireSession)
		{
			cart.GET("", g.getCart)
			cart.DELETE("", g.clearCart)
			cart.POST("/items", g.addItem)
			cart.PUT("/items/:id", g.updateItem)
			cart.DELETE("/items/:id", g.removeItem)
		}

		co := v1.Group("/checkout", g.requireSession)
		{
			co.GET("", g.getCheckout)
			co.POST("/summary", g.reviewOrder)
			co.POST("/details", g.enterDetails)
			co.POST("/back", g.back)
			co.PUT("/customer", g.updateCustomer)
			co.POST("/submit", g.submit)
			co.POST("/reset", g.reset)
		}

		adm := v1.Group("/admin", basicAuth(g.config.Admin, g.logger))
		{
			adm.GET("/orders", g.listOrders)
			adm.POST("/orders/reload", g.reloadOrders)
			adm.POST("/orders/:id/advance", g.advanceOrder)
			adm.POST("/orders/:id/notify", g.notifyCustomer)
			adm.GET("/orders/:id/notifications", g.listNotifications)
			adm.GET("/orders/:id/audit", g.auditTrail)
			adm.GET("/statistics", g.statistics)
		}
	}

	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router for tests and embedding.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Gateway.Host, g.config.Gateway.Port)
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))

	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

// respondError maps domain errors onto status codes. Anything unrecognised
// came from the order Data Store.
func (g *Gateway) respondError(c *gin.Context, err error) {
	var rej *checkout.Rejection
	switch {
	case errors.As(err, &rej):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rej.Message, "code": rej.Code.String()})
	case errors.Is(err, storefront.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, order.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, errUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, admin.ErrUnknownFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		g.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "order store unavailable"})
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
