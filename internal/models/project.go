package models

import "time"

// Project is a minimal record sessions can be scoped to. Project management
// proper is handled by the surrounding CRUD layer.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
