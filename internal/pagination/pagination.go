// Package pagination computes page metadata and the collapsed page
// window used by UI pagination controls. Both are pure functions.
package pagination

import "core/internal/model"

// Ellipsis marks a collapsed run of pages in a visible window.
const Ellipsis = -1

// Meta computes page metadata for a result set. totalPages has a floor
// of 1 so an empty set still reads as "page 1 of 1". A page beyond
// totalPages is a valid request that simply holds no rows.
func Meta(total, page, perPage int) model.Pagination {
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	return model.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Offset returns the row offset for a 1-indexed page.
func Offset(page, perPage int) int {
	return (page - 1) * perPage
}

// VisiblePages returns the page numbers a pagination control should
// render, with Ellipsis standing in for collapsed runs. Up to seven
// pages are shown in full; longer ranges keep the first and last page
// plus a three-page window around the current one, widened at either
// edge so the control never shrinks below seven slots.
func VisiblePages(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	if totalPages <= 7 {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	start, end := current-1, current+1
	switch {
	case current <= 3:
		start, end = 2, 4
	case current >= totalPages-2:
		start, end = totalPages-3, totalPages-1
	}

	pages := []int{1}
	if start > 2 {
		pages = append(pages, Ellipsis)
	}
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	if end < totalPages-1 {
		pages = append(pages, Ellipsis)
	}
	return append(pages, totalPages)
}
