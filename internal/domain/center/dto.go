package center

import (
	"time"

	"github.com/tutora/tutora-backend/internal/pkg/validator"
)

type CenterResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	OwnerID       *string   `json:"owner_id,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	GovernorateID *int      `json:"governorate_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Center) ToResponse() CenterResponse {
	return CenterResponse{
		ID:            c.ID,
		Name:          c.Name,
		OwnerID:       c.OwnerID,
		Phone:         c.Phone,
		Address:       c.Address,
		GovernorateID: c.GovernorateID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type UpdateCenterRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,phone"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=500"`
	GovernorateID *int    `json:"governorate_id,omitempty" validate:"omitempty,gte=1"`
}

func (r *UpdateCenterRequest) Validate() error {
	return validator.Struct(r)
}
