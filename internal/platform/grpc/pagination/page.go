// Package pagination normalizes list request paging fields.
package pagination

import (
	"errors"
	"slices"
	"strings"
)

// ErrInvalidOrderBy is returned for an order_by outside the allowed set.
var ErrInvalidOrderBy = errors.New("invalid order_by")

// PageSizeConfig bounds page sizes.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig lists the accepted orderings.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize returns value within cfg. Zero or negative means the default
// and the result is never below one.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	size := value
	if size <= 0 {
		size = cfg.Default
	}
	if cfg.Max > 0 {
		size = min(size, cfg.Max)
	}
	return max(size, 1)
}

// NormalizeOrderBy returns the canonical form of orderBy, case and
// surrounding space ignored, or the default when it is blank.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	orderBy = strings.ToLower(strings.TrimSpace(orderBy))
	if orderBy == "" {
		return cfg.Default, nil
	}
	if !slices.Contains(cfg.Allowed, orderBy) {
		return "", errors.Join(ErrInvalidOrderBy, errors.New("order_by "+orderBy+" is not one of "+strings.Join(cfg.Allowed, ", ")))
	}
	return orderBy, nil
}
