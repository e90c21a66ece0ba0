package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParsePagination safely parses the page and page_size query parameters.
// It uses default values of 1 for page and 50 for page_size. Only syntax is
// checked here: range rules (page >= 1, page_size bounds) are owned by the
// use case layer.
func ParsePagination(c *gin.Context) (page, pageSize int, err error) {
	// Parse page query parameter (default: 1)
	pageStr := c.DefaultQuery("page", "1")
	page, err = strconv.Atoi(pageStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page parameter: must be an integer")
	}

	// Parse page_size query parameter (default: 50)
	pageSizeStr := c.DefaultQuery("page_size", "50")
	pageSize, err = strconv.Atoi(pageSizeStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page_size parameter: must be an integer")
	}

	return page, pageSize, nil
}
