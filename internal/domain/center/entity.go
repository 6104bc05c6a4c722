package center

import "time"

type Center struct {
	ID            string
	Name          string
	OwnerID       *string
	Phone         *string
	Address       *string
	GovernorateID *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
