package api

import (
	"net/http"
	"strconv"

	"restaurant-service/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Name      string  `json:"nombre" binding:"required"`
	Surname   string  `json:"apellido" binding:"required"`
	Login     string  `json:"usuario" binding:"required"`
	Password  string  `json:"password" binding:"required"`
	Phone     *string `json:"telefono"`
	Role      string  `json:"rol" binding:"required"`
	CreatedBy *int16  `json:"creado_por"`
}

// AuthenticateRequest is the body of POST /users/authenticate
type AuthenticateRequest struct {
	Login    string `json:"usuario" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// listCouriers answers GET /couriers. Passing q, page or size switches to a
// paged search over active couriers.
func (h *Handler) listCouriers(c *gin.Context) {
	_, hasQ := c.GetQuery("q")
	_, hasPage := c.GetQuery("page")
	_, hasSize := c.GetQuery("size")
	if hasQ || hasPage || hasSize {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		size, _ := strconv.Atoi(c.Query("size"))

		result, err := h.svc.Couriers.SearchCouriers(c.Request.Context(), c.Query("q"), page, size)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	var (
		couriers []models.Courier
		err      error
	)
	if c.Query("active") == "true" {
		couriers, err = h.svc.Couriers.GetActiveCouriers(c.Request.Context())
	} else {
		couriers, err = h.svc.Couriers.GetAllCouriers(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, couriers)
}

func (h *Handler) getCourier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	courier, err := h.svc.Couriers.GetCourierByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if courier == nil {
		notFound(c, "Courier")
		return
	}
	c.JSON(http.StatusOK, courier)
}

func (h *Handler) createCourier(c *gin.Context) {
	var courier models.Courier
	if !bindJSON(c, &courier) {
		return
	}

	if err := h.svc.Couriers.AddCourier(c.Request.Context(), &courier); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, courier)
}

func (h *Handler) updateCourier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var courier models.Courier
	if !bindJSON(c, &courier) {
		return
	}
	courier.ID = id

	if err := h.svc.Couriers.UpdateCourier(c.Request.Context(), &courier); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deactivateCourier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Couriers.DeactivateCourier(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.Users.GetAllUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.svc.Users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if user == nil {
		notFound(c, "User")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) createUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user := &models.User{
		Name:      req.Name,
		Surname:   req.Surname,
		Login:     req.Login,
		Phone:     req.Phone,
		Role:      req.Role,
		CreatedBy: req.CreatedBy,
	}
	if err := h.svc.Users.AddUser(c.Request.Context(), user, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) deactivateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Users.DeactivateUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// authenticate checks credentials only; no session or token is issued
func (h *Handler) authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Users.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
