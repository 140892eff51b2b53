package classifications

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the refresh engine.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches classification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:id/classifications", h.listForUser)
}

// listForUser always answers 200 with a JSON array; a user that is unknown,
// empty or unreachable upstream is an empty array, not an error.
func (h *Handler) listForUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user id is required", nil)
		return
	}

	records, err := h.Svc.GetUserClassifications(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load classifications", nil)
		return
	}
	if records == nil {
		records = []Classification{}
	}
	respond.OK(c, records)
}
