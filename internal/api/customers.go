package api

import (
	"net/http"
	"strconv"

	"restaurant-service/internal/models"

	"github.com/gin-gonic/gin"
)

// listCustomers answers GET /customers?q=&page=&size=
func (h *Handler) listCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.Query("size"))

	result, err := h.svc.Customers.SearchCustomers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	customer, err := h.svc.Customers.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if customer == nil {
		notFound(c, "Customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) createCustomer(c *gin.Context) {
	var customer models.Customer
	if !bindJSON(c, &customer) {
		return
	}
	customer.Addresses = nil

	if err := h.svc.Customers.AddCustomer(c.Request.Context(), &customer); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var customer models.Customer
	if !bindJSON(c, &customer) {
		return
	}
	customer.ID = id
	customer.Addresses = nil

	if err := h.svc.Customers.UpdateCustomer(c.Request.Context(), &customer); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Customers.DeleteCustomer(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deactivateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Customers.DeactivateCustomer(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listAddresses(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	addresses, err := h.svc.Customers.GetAddresses(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *Handler) createAddress(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var addr models.Address
	if !bindJSON(c, &addr) {
		return
	}

	if err := h.svc.Customers.AddAddress(c.Request.Context(), id, &addr); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}
