package handlers

import (
	"math"

	"github.com/RomanDaru/otazkomat/internal/utils"

	"github.com/gin-gonic/gin"
)

// Page sizes. Values outside 1..maxPageSize fall back to the endpoint default.
const (
	maxPageSize             = 50
	defaultHistoryPageSize  = 10
	defaultTrendingPageSize = 5
)

// Fail writes the uniform JSON error shape.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

func parsePage(c *gin.Context) int {
	page := utils.StringToInt(c.Query("page"))
	if page <= 0 {
		page = 1
	}
	return page
}

func parsePageSize(c *gin.Context, def int) int {
	size := utils.StringToInt(c.Query("pageSize"))
	if size <= 0 || size > maxPageSize {
		size = def
	}
	return size
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if totalPages == 0 {
		totalPages = 1
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
