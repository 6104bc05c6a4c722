package academicyear

import "github.com/tutora/tutora-backend/internal/pkg/validator"

type CreateAcademicYearRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (r *CreateAcademicYearRequest) Validate() error {
	var errs validator.ValidationErrors

	// Name
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	// SortOrder
	if r.SortOrder < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AcademicYearResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (a *AcademicYear) ToResponse() AcademicYearResponse {
	return AcademicYearResponse{ID: a.ID, Name: a.Name, SortOrder: a.SortOrder}
}
