package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

func (g *Gateway) listOrders(c *gin.Context) {
	orders, err := g.admin.Orders(c.Query("status"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":  orders,
		"total":   len(orders),
		"loading": g.admin.Loading(),
	})
}

func (g *Gateway) reloadOrders(c *gin.Context) {
	if err := g.admin.Reload(c.Request.Context()); err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": g.admin.OrderCount()})
}

func (g *Gateway) advanceOrder(c *gin.Context) {
	o, advanced, err := g.admin.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o, "advanced": advanced})
}

func (g *Gateway) notifyCustomer(c *gin.Context) {
	msg, err := g.admin.Notify(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (g *Gateway) listNotifications(c *gin.Context) {
	history, err := g.notifications.History(c.Param("id"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": history})
}

func (g *Gateway) auditTrail(c *gin.Context) {
	if g.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log disabled"})
		return
	}
	limit := int64(defaultAuditLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxAuditLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and " + strconv.Itoa(maxAuditLimit)})
			return
		}
		limit = n
	}
	if _, err := g.admin.Order(c.Param("id")); err != nil {
		g.respondError(c, err)
		return
	}
	entries, err := g.audit.AuditTrail(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		g.logger.Error("Audit query failed", zap.String("order_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "audit log unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (g *Gateway) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, g.admin.Statistics())
}
