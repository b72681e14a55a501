// Package pagination provides page/size request binding and gorm scopes for
// list endpoints.
package pagination

import "gorm.io/gorm"

// Pagination binds page-based query parameters.
type Pagination struct {
	Page     int `form:"page,default=1" validate:"gte=1"`
	PageSize int `form:"page_size,default=25" validate:"gte=1,lte=250"`
}

// PageInfo is attached to list responses.
type PageInfo struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Normalize clamps page and page size to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 25
	}
	if p.PageSize > 250 {
		p.PageSize = 250
	}
	return p
}

// Scope applies the pagination window to a gorm statement.
func (p Pagination) Scope() func(*gorm.DB) *gorm.DB {
	n := p.Normalize()
	return func(stmt *gorm.DB) *gorm.DB {
		return stmt.Offset((n.Page - 1) * n.PageSize).Limit(n.PageSize)
	}
}

// Info builds the PageInfo for a list response.
func (p Pagination) Info(total int64) PageInfo {
	n := p.Normalize()
	return PageInfo{Page: n.Page, PageSize: n.PageSize, Total: total}
}
