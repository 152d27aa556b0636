package catalog

import "github.com/matst80/slask-catalog/pkg/types"

type Page struct {
	Items      []*types.CatalogItem `json:"items"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
	Showing    int                  `json:"showing"`
	Total      int                  `json:"total"`
}

// Paginate slices out one zero based page. Pages past the end are empty.
func Paginate(items []*types.CatalogItem, page, size int) Page {
	if size <= 0 {
		size = types.DefaultPageSize
	}
	page = max(page, 0)
	total := len(items)
	totalPages := (total + size - 1) / size

	start := min(page*size, total)
	end := min(start+size, total)
	return Page{
		Items:      items[start:end:end],
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Showing:    end - start,
		Total:      total,
	}
}
