package models

import "time"

// Student defines the tutee model based on the 'students' table
type Student struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Name         string    `json:"name" db:"name" example:"Sophie Martin"`
	ParentID     int64     `json:"parentId" db:"parent_id" example:"2"`
	DefaultPrice Money     `json:"defaultPrice" db:"default_price_cents" swaggertype:"number" example:"25.50"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
	Parent       *User     `json:"parent,omitempty"` // Relation, no db tag
}
