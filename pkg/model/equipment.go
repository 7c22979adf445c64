package model

import "time"

// Equipment is a registry entry describing one reservable unit and its
// capacity policy. The scheduling engine reads it, never mutates it.
type Equipment struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name              string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category          string    `json:"category,omitempty" bson:"category,omitempty" validate:"omitempty,max=50"`
	Location          string    `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	AllowSimultaneous bool      `json:"allow_simultaneous" bson:"allow_simultaneous"`
	MaxSimultaneous   int       `json:"max_simultaneous" bson:"max_simultaneous" validate:"omitempty,min=1,max=1000"`
	Active            bool      `json:"active" bson:"active"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Capacity normalizes the policy: exclusive equipment always has
// capacity 1 regardless of what the registry row says.
func (e *Equipment) Capacity() int {
	if !e.AllowSimultaneous {
		return 1
	}
	if e.MaxSimultaneous < 1 {
		return 1
	}
	return e.MaxSimultaneous
}
