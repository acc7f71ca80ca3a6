package handler

import (
	"database/sql"
	"errors"
	"strconv"

	"estate-import/internal/models"
	"estate-import/internal/repository"
	"estate-import/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type MappingHandler struct {
	mappingRepo *repository.MappingRepository
}

func NewMappingHandler(mappingRepo *repository.MappingRepository) *MappingHandler {
	return &MappingHandler{mappingRepo: mappingRepo}
}

func (h *MappingHandler) GetMappings(c *fiber.Ctx) error {
	mappings, err := h.mappingRepo.FindAll()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve mappings", err)
	}

	return utils.SuccessResponse(c, "Mappings retrieved successfully", mappings)
}

func (h *MappingHandler) GetMapping(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping ID", err)
	}

	mapping, err := h.mappingRepo.GetByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Mapping not found", err)
	}

	return utils.SuccessResponse(c, "Mapping retrieved successfully", mapping)
}

func (h *MappingHandler) CreateMapping(c *fiber.Ctx) error {
	var mapping models.FieldMapping
	if err := c.BodyParser(&mapping); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	// Unknown target fields are rejected here, before any run can use them
	if err := mapping.Validate(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping", err)
	}

	if err := h.mappingRepo.Create(&mapping); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create mapping", err)
	}

	return utils.SuccessResponse(c, "Mapping created successfully", mapping)
}

func (h *MappingHandler) UpdateMapping(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping ID", err)
	}

	if _, err := h.mappingRepo.GetByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Mapping not found", err)
	}

	var mapping models.FieldMapping
	if err := c.BodyParser(&mapping); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	mapping.ID = id

	if err := mapping.Validate(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping", err)
	}

	if err := h.mappingRepo.Update(&mapping); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update mapping", err)
	}

	return utils.SuccessResponse(c, "Mapping updated successfully", mapping)
}

// SetDefault makes one mapping the default; the repository clears the flag
// on every other mapping in the same transaction.
func (h *MappingHandler) SetDefault(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping ID", err)
	}

	if err := h.mappingRepo.SetDefault(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Mapping not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to set default mapping", err)
	}

	return utils.SuccessResponse(c, "Default mapping updated", fiber.Map{"id": id})
}

// DeleteMapping removes a mapping; past runs keep their history with a null
// mapping reference.
func (h *MappingHandler) DeleteMapping(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid mapping ID", err)
	}

	if err := h.mappingRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete mapping", err)
	}

	return utils.SuccessResponse(c, "Mapping deleted successfully", fiber.Map{"id": id})
}
