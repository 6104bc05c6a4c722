package governorate

import "context"

type GovernorateRepository interface {
	List(ctx context.Context) ([]Governorate, error)
	Exists(ctx context.Context, id int) (bool, error)
	// Upsert inserts or renames governorates keyed by ID.
	Upsert(ctx context.Context, govs []Governorate) error
}
