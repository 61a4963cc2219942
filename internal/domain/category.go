package domain

import (
	"fmt"
	"strings"
)

// Category classifies tickets and names a technician's specialty.
type Category string

const (
	CategoryNetwork     Category = "NETWORK"
	CategoryApplication Category = "APPLICATION"
	CategorySecurity    Category = "SECURITY"
	CategoryHardware    Category = "HARDWARE"
)

// Categories lists every known category.
var Categories = []Category{CategoryNetwork, CategoryApplication, CategorySecurity, CategoryHardware}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryNetwork, CategoryApplication, CategorySecurity, CategoryHardware:
		return true
	}
	return false
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}
