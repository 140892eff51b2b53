package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"user-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches user routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.create)
	rg.POST("/users/many", h.createMany)
	rg.PUT("/users/:id", h.update)
	rg.DELETE("/users/:id", h.delete)
	rg.GET("/users/many", h.getMany)
	rg.GET("/users/amount", h.amount)
	rg.GET("/users/search", h.search)
	rg.GET("/users/search/amount", h.searchAmount)
	rg.GET("/users/:id", h.getByID)
}

func (h *Handler) create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid user", err.Error())
		return
	}

	user, err := h.Svc.Create(c.Request.Context(), req.toUser())
	if err != nil {
		h.respondError(c, err, "failed to create user")
		return
	}
	respond.Created(c, user)
}

func (h *Handler) createMany(c *gin.Context) {
	var reqs []createUserRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid users", err.Error())
		return
	}
	if len(reqs) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one user is required", nil)
		return
	}

	batch := make([]User, 0, len(reqs))
	for _, req := range reqs {
		batch = append(batch, req.toUser())
	}

	created, err := h.Svc.CreateMany(c.Request.Context(), batch)
	if err != nil {
		h.respondError(c, err, "failed to create users")
		return
	}
	respond.Created(c, created)
}

func (h *Handler) update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid user", err.Error())
		return
	}

	user, err := h.Svc.UpdateByID(c.Request.Context(), c.Param("id"), req.toUpdate())
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}
	respond.OK(c, user)
}

func (h *Handler) delete(c *gin.Context) {
	user, err := h.Svc.DeleteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to delete user")
		return
	}
	respond.OK(c, user)
}

func (h *Handler) getByID(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to fetch user")
		return
	}
	respond.OK(c, user)
}

func (h *Handler) getMany(c *gin.Context) {
	list, err := h.Svc.GetMany(c.Request.Context(), filterFromQuery(c), pageFromQuery(c))
	if err != nil {
		h.respondError(c, err, "failed to list users")
		return
	}
	respond.OK(c, list)
}

func (h *Handler) amount(c *gin.Context) {
	count, err := h.Svc.Count(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.respondError(c, err, "failed to count users")
		return
	}
	respond.OK(c, count)
}

func (h *Handler) search(c *gin.Context) {
	list, err := h.Svc.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		h.respondError(c, err, "failed to search users")
		return
	}
	respond.OK(c, list)
}

func (h *Handler) searchAmount(c *gin.Context) {
	count, err := h.Svc.SearchCount(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err, "failed to count search results")
		return
	}
	respond.OK(c, count)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "user_not_found", "User not found", nil)
	case errors.Is(err, ErrDuplicate):
		respond.Error(c, http.StatusConflict, "user_exists", "User already exists", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func filterFromQuery(c *gin.Context) Filter {
	return Filter{
		FirstName: c.Query("firstName"),
		LastName:  c.Query("lastName"),
		Mail:      c.Query("mail"),
	}
}

func pageFromQuery(c *gin.Context) Page {
	page := Page{SortBy: c.Query("sortBy")}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page.Offset = parsed
		}
	}
	page.SortDesc = c.Query("order") == "desc"
	return page.Normalize()
}
