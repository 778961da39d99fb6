package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/artifact"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/dto"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/middleware"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// CategoryHandler exposes category CRUD endpoints.
type CategoryHandler struct {
	categories artifact.CategoryRepository
	log        zerolog.Logger
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(categories artifact.CategoryRepository, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		log:        log.With().Str("handler", "category").Logger(),
	}
}

// Create handles POST /v1/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"name is required", "category-bind")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"name must not be blank", "category-blank")
		return
	}

	category := artifact.NewCategory(middleware.UserID(c), name, req.Description, req.Color, req.Icon)
	if err := h.categories.Create(c.Request.Context(), category); err != nil {
		responses.HandleError(c, err, "failed to create category")
		return
	}
	c.JSON(http.StatusCreated, dto.CategoryResponse{Category: category})
}

// List handles GET /v1/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.ListByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(categories))
}

// Update handles PATCH /v1/categories/:category_id.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"name is required", "category-update-bind")
		return
	}

	userID := middleware.UserID(c)
	category, err := h.categories.FindByPublicID(c.Request.Context(), userID, c.Param("category_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch category")
		return
	}

	category.Name = strings.TrimSpace(req.Name)
	if category.Name == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"name must not be blank", "category-update-blank")
		return
	}
	category.Description = req.Description
	category.Color = req.Color
	category.Icon = req.Icon

	if err := h.categories.Update(c.Request.Context(), category); err != nil {
		responses.HandleError(c, err, "failed to update category")
		return
	}
	c.JSON(http.StatusOK, dto.CategoryResponse{Category: category})
}

// Delete handles DELETE /v1/categories/:category_id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), middleware.UserID(c), c.Param("category_id")); err != nil {
		responses.HandleError(c, err, "failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}
