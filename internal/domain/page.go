package domain

// PageRequest selects a zero-based page of a stable-ordered listing.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest clamps page and size. A non-positive size becomes
// defaultSize and sizes above maxSize are capped.
func NewPageRequest(page, size, defaultSize, maxSize int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return PageRequest{Page: page, Size: size}
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of a listing plus the total row count.
type Page[T any] struct {
	Items []T
	PageRequest
	Total int64
}

// TotalPages rounds Total up to whole pages.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// MapPage converts the items of p with fn.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(p.Items))
	for i, it := range p.Items {
		items[i] = fn(it)
	}
	return Page[U]{Items: items, PageRequest: p.PageRequest, Total: p.Total}
}
