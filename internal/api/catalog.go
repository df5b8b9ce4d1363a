package api

import (
	"net/http"
	"strconv"

	"restaurant-service/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.svc.Categories.GetAllCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	category, err := h.svc.Categories.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if category == nil {
		notFound(c, "Category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) createCategory(c *gin.Context) {
	var category models.Category
	if !bindJSON(c, &category) {
		return
	}

	if err := h.svc.Categories.AddCategory(c.Request.Context(), &category); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var category models.Category
	if !bindJSON(c, &category) {
		return
	}
	category.ID = id

	if err := h.svc.Categories.UpdateCategory(c.Request.Context(), &category); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Categories.DeleteCategory(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listProducts answers GET /products. With ?q= only active products whose
// name contains q, or whose category id is q, are listed.
func (h *Handler) listProducts(c *gin.Context) {
	var (
		products []models.Product
		err      error
	)
	if q, ok := c.GetQuery("q"); ok {
		products, err = h.svc.Products.SearchProducts(c.Request.Context(), q)
	} else {
		products, err = h.svc.Products.GetAllProducts(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.svc.Products.GetProductByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if product == nil {
		notFound(c, "Product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var product models.Product
	if !bindJSON(c, &product) {
		return
	}
	product.Category = nil

	if err := h.svc.Products.AddProduct(c.Request.Context(), &product); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var product models.Product
	if !bindJSON(c, &product) {
		return
	}
	product.ID = id
	product.Category = nil

	if err := h.svc.Products.UpdateProduct(c.Request.Context(), &product); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Products.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deactivateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Products.DeactivateProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// lowStockProducts answers GET /products/low-stock?threshold=5
func (h *Handler) lowStockProducts(c *gin.Context) {
	threshold := h.lowStock
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		threshold = n
	}

	levels, err := h.svc.Products.LowStockProducts(c.Request.Context(), threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, levels)
}
