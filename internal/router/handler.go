package router

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/backend"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/global"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/pos"
)

type Handler struct {
	manager *pos.Manager
}

func NewHandler(manager *pos.Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.manager.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Session store connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "sessions": "Connected"}))
}

// OpenRegister starts a fresh register session with a pinned catalog snapshot.
func (h *Handler) OpenRegister(c *gin.Context) {
	reg, err := h.manager.Open(c.Request.Context(), c.GetString("token"))
	if err != nil {
		h.respondBackendError(c, err, "Failed to open register")
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(map[string]interface{}{
		"register": newRegisterView(reg),
		"catalog":  reg.Catalog.Available(),
	}))
}

func (h *Handler) GetRegister(c *gin.Context) {
	reg, err := h.manager.Get(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"register": newRegisterView(reg),
		"catalog":  reg.Catalog.Available(),
	}))
}

// ScanProduct resolves a barcode or name fragment and adds the hit to the
// cart. A miss is a 200 with matched=false; the search box only clears on a hit.
func (h *Handler) ScanProduct(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "term", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	var matched *models.Product
	var hit bool
	reg, err := h.manager.Update(c.Request.Context(), c.Param("sessionId"), func(r *pos.Register) error {
		var err error
		matched, hit, err = r.Resolve(req.Term)
		return err
	})
	if err != nil {
		h.respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"matched":      hit,
		"product":      matched,
		"clear_search": hit,
		"register":     newRegisterView(reg),
	}))
}

func (h *Handler) AddLine(c *gin.Context) {
	var req models.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "product_id", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	reg, err := h.manager.Update(c.Request.Context(), c.Param("sessionId"), func(r *pos.Register) error {
		_, err := r.AddProduct(req.ProductID)
		return err
	})
	if err != nil {
		h.respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newRegisterView(reg)))
}

func (h *Handler) UpdateLine(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product ID", []global.ValidationError{
			{Field: "productId", Message: "Must be a valid integer", Code: "invalid_format"},
		}))
		return
	}

	var req models.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "quantity", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	reg, err := h.manager.Update(c.Request.Context(), c.Param("sessionId"), func(r *pos.Register) error {
		return r.SetQuantity(productID, req.Quantity)
	})
	if err != nil {
		h.respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newRegisterView(reg)))
}

func (h *Handler) RemoveLine(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product ID", []global.ValidationError{
			{Field: "productId", Message: "Must be a valid integer", Code: "invalid_format"},
		}))
		return
	}

	reg, err := h.manager.Update(c.Request.Context(), c.Param("sessionId"), func(r *pos.Register) error {
		return r.RemoveLine(productID)
	})
	if err != nil {
		h.respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newRegisterView(reg)))
}

func (h *Handler) ClearCart(c *gin.Context) {
	reg, err := h.manager.Update(c.Request.Context(), c.Param("sessionId"), func(r *pos.Register) error {
		return r.ClearCart()
	})
	if err != nil {
		h.respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newRegisterView(reg)))
}

func (h *Handler) SelectTender(c *gin.Context) {
	var req models.SelectTenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "mode", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	reg, err := h.manager.Update(c.Request.Context(), c.Param("sessionId"), func(r *pos.Register) error {
		return r.SelectTender(req.Mode)
	})
	if err != nil {
		h.respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newRegisterView(reg)))
}

func (h *Handler) SetTenderAmount(c *gin.Context) {
	var req models.SetTenderAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "amount", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	reg, err := h.manager.Update(c.Request.Context(), c.Param("sessionId"), func(r *pos.Register) error {
		return r.SetTenderAmount(req.Kind, req.Amount)
	})
	if err != nil {
		h.respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(newRegisterView(reg)))
}

// Checkout commits the sale. On failure the register keeps its cart and
// tender untouched so the operator can adjust and resubmit by hand.
func (h *Handler) Checkout(c *gin.Context) {
	reg, err := h.manager.Checkout(c.Request.Context(), c.GetString("token"), c.Param("sessionId"))
	if err != nil {
		var remote *backend.RemoteError
		switch {
		case errors.As(err, &remote):
			c.JSON(rejectionStatus(remote), global.APIResponse{
				Success: false,
				Message: remote.Reason,
				Data:    map[string]interface{}{"register": newRegisterView(reg)},
			})
		case errors.Is(err, pos.ErrEmptyCart),
			errors.Is(err, pos.ErrTenderUnbalanced),
			errors.Is(err, pos.ErrSubmitInFlight),
			errors.Is(err, pos.ErrSessionNotFound):
			h.respondEngineError(c, err)
		default:
			log.Printf("Error committing sale for session %s: %v", c.Param("sessionId"), err)
			resp := global.APIResponse{
				Success: false,
				Message: "Sale submission failed: backend unreachable",
			}
			if reg != nil {
				resp.Data = map[string]interface{}{"register": newRegisterView(reg)}
			}
			c.JSON(http.StatusBadGateway, resp)
		}
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"register": newRegisterView(reg),
		"sale":     reg.LastSale,
	}))
}

// RefreshCatalog re-fetches the catalog; the only way price or stock changes
// become visible mid-session.
func (h *Handler) RefreshCatalog(c *gin.Context) {
	reg, err := h.manager.RefreshCatalog(c.Request.Context(), c.GetString("token"), c.Param("sessionId"))
	if err != nil {
		h.respondBackendError(c, err, "Failed to refresh catalog")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"register": newRegisterView(reg),
		"catalog":  reg.Catalog.Available(),
	}))
}

// ListSales proxies the backend's sale history for the manager review screen.
func (h *Handler) ListSales(c *gin.Context) {
	sales, err := h.manager.Backend().ListSales(c.Request.Context(), c.GetString("token"))
	if err != nil {
		h.respondBackendError(c, err, "Failed to fetch sales")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(sales))
}

// respondEngineError maps engine errors to HTTP statuses.
func (h *Handler) respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pos.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Register session not found", []global.ValidationError{
			{Field: "sessionId", Message: "No register session exists with this ID", Code: "not_found"},
		}))
	case errors.Is(err, pos.ErrProductNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found in catalog", []global.ValidationError{
			{Field: "product_id", Message: "No catalog product exists with this ID", Code: "not_found"},
		}))
	case errors.Is(err, pos.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, global.ErrorResponse("A sale commit is already in flight", nil))
	case errors.Is(err, pos.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Cart is empty", nil))
	case errors.Is(err, pos.ErrTenderUnbalanced):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Tender amounts do not cover the sale total", nil))
	case errors.Is(err, models.ErrNotMixedMode):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Tender amounts can only be edited in mixed mode", nil))
	default:
		log.Printf("Error handling register action: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Internal server error", nil))
	}
}

// respondBackendError maps backend client errors for catalog and sales reads.
func (h *Handler) respondBackendError(c *gin.Context, err error, message string) {
	if errors.Is(err, pos.ErrSessionNotFound) {
		h.respondEngineError(c, err)
		return
	}
	var remote *backend.RemoteError
	if errors.As(err, &remote) {
		c.JSON(rejectionStatus(remote), global.ErrorResponse(remote.Reason, nil))
		return
	}
	log.Printf("%s: %v", message, err)
	c.JSON(http.StatusBadGateway, global.ErrorResponse(message, nil))
}

// rejectionStatus passes 4xx rejections through and folds backend 5xx into 502.
func rejectionStatus(remote *backend.RemoteError) int {
	if remote.StatusCode >= 400 && remote.StatusCode < 500 {
		return remote.StatusCode
	}
	return http.StatusBadGateway
}
