package handler

import (
	"estate-import/internal/repository"
	"estate-import/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type PropertyHandler struct {
	propertyRepo *repository.PropertyRepository
}

func NewPropertyHandler(propertyRepo *repository.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{propertyRepo: propertyRepo}
}

func (h *PropertyHandler) GetProperties(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	properties, total, err := h.propertyRepo.FindAll(params.Limit, offset, params.Search, params.OrderBy, params.OrderDir)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve properties", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Properties retrieved successfully", fiber.Map{
		"properties": properties,
	}, pagination)
}
