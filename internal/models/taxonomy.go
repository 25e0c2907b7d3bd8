package models

import "time"

// ActivityNode is one row of the activity code tree. Nodes reference their
// parent by code rather than by object pointer, so integrity checks are a
// plain iterative walk over a code-keyed map.
type ActivityNode struct {
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	ParentCode  *string   `db:"parent_code" json:"parent_code,omitempty"`
	Level       int       `db:"level" json:"level"`
	Scope       int       `db:"scope" json:"scope"`
	Unit        *string   `db:"unit" json:"unit,omitempty"`
	IsLeaf      bool      `db:"is_leaf" json:"is_leaf"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ValidScope reports whether a GHG Protocol scope value is one of 1, 2, 3.
func ValidScope(scope int) bool {
	return scope >= 1 && scope <= 3
}
