package api

import (
	"net/http"
	"time"

	"restaurant-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	CustomerID      int16              `json:"cliente_id" binding:"required"`
	UserID          int16              `json:"usuario_id" binding:"required"`
	CourierID       *int16             `json:"rider_id"`
	CustomerName    string             `json:"nombre_cliente"`
	CustomerSurname string             `json:"apellido_cliente"`
	CreatedBy       *int16             `json:"creado_por"`
	Lines           []OrderLineRequest `json:"detalles"`
}

// OrderLineRequest is one line of a new order. A missing unit price is
// taken from the product.
type OrderLineRequest struct {
	ProductID int16           `json:"producto_id"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

// OrderStatusRequest is the body of PATCH /orders/:id/status
type OrderStatusRequest struct {
	Status *int8 `json:"estado_pedido" binding:"required"`
}

// AssignCourierRequest is the body of PATCH /orders/:id/courier
type AssignCourierRequest struct {
	CourierID int16 `json:"rider_id" binding:"required"`
}

func (r *CreateOrderRequest) toModel() (*models.Order, []models.OrderLine) {
	order := &models.Order{
		CustomerID:      r.CustomerID,
		UserID:          r.UserID,
		CourierID:       r.CourierID,
		CustomerName:    r.CustomerName,
		CustomerSurname: r.CustomerSurname,
		CreatedBy:       r.CreatedBy,
	}

	lines := make([]models.OrderLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, models.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return order, lines
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.svc.Orders.GetAllOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// createOrder handles order creation. Repeating an Idempotency-Key returns
// the order created by the first request with 200 instead of 201.
func (h *Handler) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, lines := req.toModel()
	res, err := h.svc.Orders.SubmitOrder(c.Request.Context(), c.GetHeader("Idempotency-Key"), order, lines)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, res.Order)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.svc.Orders.GetOrderDetail(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if detail == nil {
		notFound(c, "Order")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var order models.Order
	if !bindJSON(c, &order) {
		return
	}
	order.ID = id
	order.Lines = nil
	order.Payments = nil

	if err := h.svc.Orders.UpdateOrder(c.Request.Context(), &order); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), id, *req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) assignCourier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req AssignCourierRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.Orders.AssignCourier(c.Request.Context(), id, req.CourierID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listPayments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	payments, err := h.svc.Payments.GetPaymentsByOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) createPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var p models.Payment
	if !bindJSON(c, &p) {
		return
	}
	p.OrderID = id

	if err := h.svc.Payments.AddPayment(c.Request.Context(), &p); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"estado_pago" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.Payments.UpdatePaymentStatus(c.Request.Context(), id, req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// salesReport answers GET /reports/sales?from=2025-01-01&to=2025-02-01.
// to defaults to the day after from.
func (h *Handler) salesReport(c *gin.Context) {
	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
		return
	}

	to := from.AddDate(0, 0, 1)
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(time.DateOnly, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
			return
		}
	}

	rows, err := h.svc.Orders.SalesReport(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from": from.Format(time.DateOnly),
		"to":   to.Format(time.DateOnly),
		"rows": rows,
	})
}
