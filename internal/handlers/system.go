package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
)

// SystemHandler exposes internals used by the rendering layer.
type SystemHandler struct {
	revalidate *services.RevalidationService
}

func NewSystemHandler(revalidate *services.RevalidationService) *SystemHandler {
	return &SystemHandler{revalidate: revalidate}
}

// Revalidations drains and returns the set of views invalidated since the
// last poll. The renderer re-fetches these paths.
// GET /api/system/revalidations
func (h *SystemHandler) Revalidations(c *gin.Context) {
	response.Success(c, h.revalidate.Consume())
}
