package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Page sizes the list endpoints accept; anything else falls back to the
// default so a crafted query string cannot request unbounded pages.
var allowedLimits = []int{10, 25, 50, 100}

const defaultLimit = 25

// PaginationParams carries the list query parameters shared by the run,
// property and log endpoints.
type PaginationParams struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Search   string `json:"search"`
	OrderBy  string `json:"order_by"`
	OrderDir string `json:"order_dir"`
}

// PaginationMeta describes one page of a paginated response
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        int   `json:"from"`
	To          int   `json:"to"`
	HasMore     bool  `json:"has_more"`
}

// PaginatedResponse is the envelope list endpoints reply with
type PaginatedResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// GetPaginationParams reads page, limit, search and ordering from the query
// string, clamping each to safe values.
func GetPaginationParams(c *fiber.Ctx) PaginationParams {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	valid := false
	for _, l := range allowedLimits {
		if limit == l {
			valid = true
			break
		}
	}
	if !valid {
		limit = defaultLimit
	}

	orderDir := strings.ToLower(c.Query("order_dir", "asc"))
	if orderDir != "asc" && orderDir != "desc" {
		orderDir = "asc"
	}

	return PaginationParams{
		Page:     page,
		Limit:    limit,
		Search:   c.Query("search", ""),
		OrderBy:  c.Query("order_by", ""),
		OrderDir: orderDir,
	}
}

// OrderClause builds an ORDER BY clause from caller-supplied column and
// direction. The column must appear in the allowed list, since it is
// interpolated into SQL; anything else falls back to the given default
// clause. The direction is normalized to ASC/DESC.
func OrderClause(orderBy, orderDir string, allowed []string, fallback string) string {
	dir := "ASC"
	if strings.EqualFold(orderDir, "desc") {
		dir = "DESC"
	}
	for _, col := range allowed {
		if col == orderBy {
			return "ORDER BY " + col + " " + dir
		}
	}
	return "ORDER BY " + fallback
}

// CalculatePagination derives page metadata from the row total
func CalculatePagination(page, limit int, total int64) PaginationMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}

	lastPage := int(math.Ceil(float64(total) / float64(limit)))
	from := (page-1)*limit + 1
	to := page * limit

	if total == 0 {
		from = 0
		to = 0
	} else if to > int(total) {
		to = int(total)
	}

	return PaginationMeta{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		LastPage:    lastPage,
		From:        from,
		To:          to,
		HasMore:     page < lastPage,
	}
}

// PaginatedResponseBuilder writes the standard list envelope
func PaginatedResponseBuilder(c *fiber.Ctx, message string, data interface{}, pagination PaginationMeta) error {
	return c.JSON(PaginatedResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// GetOffset converts page/limit into a SQL offset
func GetOffset(page, limit int) int {
	return (page - 1) * limit
}
