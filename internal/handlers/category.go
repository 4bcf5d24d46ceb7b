package handlers

import (
	"context"
	"errors"

	"github.com/m1z23r/drift/pkg/drift"

	"github.com/avaldes/remarket-api/internal/models"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/pkg/dto"
)

type CategoryHandler struct {
	categoryService CategoryServiceInterface
}

func NewCategoryHandler(categoryService CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) List(c *drift.Context) {
	var typeFilter *string
	if t := c.QueryParam("type"); t != "" {
		if !models.ValidListingType(t) {
			c.BadRequest("unknown listing type")
			return
		}
		typeFilter = &t
	}

	categories, err := h.categoryService.List(context.Background(), typeFilter)
	if err != nil {
		c.InternalServerError("failed to list categories")
		return
	}

	response := make([]dto.CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(&category)
	}

	_ = c.JSON(200, response)
}

func (h *CategoryHandler) Get(c *drift.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid category id")
		return
	}

	category, err := h.categoryService.GetByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.NotFound("category not found")
			return
		}
		c.InternalServerError("failed to get category")
		return
	}

	_ = c.JSON(200, toCategoryResponse(category))
}

func (h *CategoryHandler) Create(c *drift.Context) {
	var req dto.CreateCategoryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	category, err := h.categoryService.Create(context.Background(), req.Name, req.Type, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCategory):
			c.BadRequest("unknown listing type")
		case errors.Is(err, services.ErrCategoryNotFound):
			c.BadRequest("parent category not found")
		case errors.Is(err, services.ErrCategoryTypeMismatch):
			c.BadRequest("parent category has a different type")
		case errors.Is(err, services.ErrSlugTaken):
			c.BadRequest("a category with this name already exists")
		default:
			c.InternalServerError("failed to create category")
		}
		return
	}

	_ = c.JSON(201, toCategoryResponse(category))
}

func (h *CategoryHandler) Update(c *drift.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid category id")
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	category, err := h.categoryService.Update(context.Background(), id, req.Name, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			c.NotFound("category not found")
		case errors.Is(err, services.ErrCategoryCycle):
			c.BadRequest("move would create a cycle")
		case errors.Is(err, services.ErrSlugTaken):
			c.BadRequest("a category with this name already exists")
		default:
			c.InternalServerError("failed to update category")
		}
		return
	}

	_ = c.JSON(200, toCategoryResponse(category))
}

func (h *CategoryHandler) Delete(c *drift.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.BadRequest("invalid category id")
		return
	}

	if err := h.categoryService.Delete(context.Background(), id); err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.NotFound("category not found")
			return
		}
		c.InternalServerError("failed to delete category")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "category deleted"})
}

func toCategoryResponse(category *models.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		Slug:     category.Slug,
		Type:     category.Type,
		ParentID: category.ParentID,
	}
}
