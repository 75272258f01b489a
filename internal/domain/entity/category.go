package entity

import "time"

// Category agrupa productos (lácteos, panadería, aseo...).
type Category struct {
	ID          string
	Name        string // único
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
