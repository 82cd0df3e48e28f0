package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/storefront"
)

type lineView struct {
	Product     catalog.Product `json:"product"`
	Quantity    int             `json:"quantity"`
	Subtotal    int64           `json:"subtotal"`
	WeightGrams int             `json:"weight_grams"`
}

type cartView struct {
	Lines       []lineView `json:"lines"`
	Count       int        `json:"count"`
	Total       int64      `json:"total"`
	TotalWeight int        `json:"total_weight_grams"`
}

func newCartView(c *cart.Cart) cartView {
	lines := c.Lines()
	v := cartView{
		Lines:       make([]lineView, len(lines)),
		Count:       c.Count(),
		Total:       c.Total(),
		TotalWeight: c.TotalWeight(),
	}
	for i, l := range lines {
		v.Lines[i] = lineView{
			Product:     l.Product,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal(),
			WeightGrams: l.WeightGrams(),
		}
	}
	return v
}

type checkoutView struct {
	Step    string                   `json:"step"`
	Details checkout.CustomerDetails `json:"details"`
	Cart    cartView                 `json:"cart"`
}

func newCheckoutView(s *storefront.Session) checkoutView {
	return checkoutView{
		Step:    s.Wizard.Step().String(),
		Details: s.Wizard.Details(),
		Cart:    newCartView(s.Cart),
	}
}

// requireSession rejects storefront calls without a session header.
func (g *Gateway) requireSession(c *gin.Context) {
	if c.GetHeader(sessionHeader) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": sessionHeader + " header is required"})
		return
	}
	c.Next()
}

func sessionID(c *gin.Context) string {
	return c.GetHeader(sessionHeader)
}

func (g *Gateway) createSession(c *gin.Context) {
	s := g.sessions.Create(c.Request.Context())
	c.Header(sessionHeader, s.ID)
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID})
}

func (g *Gateway) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": g.catalog.Products()})
}

func (g *Gateway) listCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"countries": checkout.Countries()})
}

// mutateCart applies fn to the session cart and answers with the new cart.
func (g *Gateway) mutateCart(c *gin.Context, fn func(s *storefront.Session) error) {
	var view cartView
	err := g.sessions.Update(c.Request.Context(), sessionID(c), func(s *storefront.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		view = newCartView(s.Cart)
		return nil
	})
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (g *Gateway) getCart(c *gin.Context) {
	var view cartView
	err := g.sessions.View(c.Request.Context(), sessionID(c), func(s *storefront.Session) error {
		view = newCartView(s.Cart)
		return nil
	})
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (g *Gateway) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, ok := g.catalog.Lookup(req.ProductID)
	if !ok {
		g.respondError(c, errUnknownProduct)
		return
	}
	g.mutateCart(c, func(s *storefront.Session) error {
		s.Cart.Add(p)
		return nil
	})
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (g *Gateway) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	g.mutateCart(c, func(s *storefront.Session) error {
		s.Cart.UpdateQuantity(id, *req.Quantity)
		return nil
	})
}

func (g *Gateway) removeItem(c *gin.Context) {
	id := c.Param("id")
	g.mutateCart(c, func(s *storefront.Session) error {
		s.Cart.Remove(id)
		return nil
	})
}

func (g *Gateway) clearCart(c *gin.Context) {
	g.mutateCart(c, func(s *storefront.Session) error {
		s.Cart.Clear()
		return nil
	})
}

// stepCheckout runs a wizard action and answers with the checkout state.
func (g *Gateway) stepCheckout(c *gin.Context, fn func(s *storefront.Session) error) {
	var view checkoutView
	err := g.sessions.Update(c.Request.Context(), sessionID(c), func(s *storefront.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		view = newCheckoutView(s)
		return nil
	})
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (g *Gateway) getCheckout(c *gin.Context) {
	var view checkoutView
	err := g.sessions.View(c.Request.Context(), sessionID(c), func(s *storefront.Session) error {
		view = newCheckoutView(s)
		return nil
	})
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (g *Gateway) reviewOrder(c *gin.Context) {
	g.stepCheckout(c, func(s *storefront.Session) error {
		return s.Wizard.ReviewOrder(s.Cart)
	})
}

func (g *Gateway) enterDetails(c *gin.Context) {
	g.stepCheckout(c, func(s *storefront.Session) error {
		return s.Wizard.EnterDetails()
	})
}

func (g *Gateway) back(c *gin.Context) {
	g.stepCheckout(c, func(s *storefront.Session) error {
		return s.Wizard.Back()
	})
}

func (g *Gateway) reset(c *gin.Context) {
	g.stepCheckout(c, func(s *storefront.Session) error {
		s.Wizard.Reset()
		return nil
	})
}

// customerRequest carries a partial update; absent fields are left alone.
type customerRequest struct {
	Name        *string `json:"name"`
	CountryCode *string `json:"country_code"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Landmark    *string `json:"landmark"`
	City        *string `json:"city"`
	Pincode     *string `json:"pincode"`
}

func (g *Gateway) updateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g.stepCheckout(c, func(s *storefront.Session) error {
		w := s.Wizard
		if req.CountryCode != nil {
			if err := w.SetCountry(*req.CountryCode); err != nil {
				return err
			}
		}
		if req.Phone != nil {
			w.SetPhone(*req.Phone)
		}
		if req.Name != nil {
			w.SetName(*req.Name)
		}
		if req.Address != nil {
			w.SetAddress(*req.Address)
		}
		if req.Landmark != nil {
			w.SetLandmark(*req.Landmark)
		}
		if req.City != nil {
			w.SetCity(*req.City)
		}
		if req.Pincode != nil {
			w.SetPincode(*req.Pincode)
		}
		return nil
	})
}

func (g *Gateway) submit(c *gin.Context) {
	var receipt *storefront.Receipt
	err := g.sessions.Update(c.Request.Context(), sessionID(c), func(s *storefront.Session) error {
		r, err := g.checkout.Submit(c.Request.Context(), s)
		if err != nil {
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}
