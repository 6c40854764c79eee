// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// OrderReader loads a caller's own order
type OrderReader interface {
	Get(ctx context.Context, userID, orderID uint) (*order.Order, error)
}

// InvoiceGenerator renders an order as a PDF document
type InvoiceGenerator interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	orders   OrderReader
	invoices InvoiceGenerator
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders OrderReader, invoices InvoiceGenerator) *InvoiceHandler {
	return &InvoiceHandler{orders: orders, invoices: invoices}
}

// DownloadInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := h.invoices.GenerateInvoice(o)
	if err != nil {
		respondError(c, apperror.Internal("failed to generate invoice", err))
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", o.OrderNumber)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}
