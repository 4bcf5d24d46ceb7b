package handlers

import (
	"strconv"

	"github.com/m1z23r/drift/pkg/drift"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseIDParam(c *drift.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func parsePagination(c *drift.Context) (page, pageSize int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}

	pageSize = defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}
