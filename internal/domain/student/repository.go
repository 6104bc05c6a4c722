package student

import "context"

type StudentRepository interface {
	GetByID(ctx context.Context, centerID, id string) (Student, error)
	// GetByIDs returns the students of centerID among ids; foreign ids are absent.
	GetByIDs(ctx context.Context, centerID string, ids []string) ([]Student, error)
	Create(ctx context.Context, s Student) (Student, error)
	Update(ctx context.Context, s Student) error
	Delete(ctx context.Context, centerID, id string) error
	List(ctx context.Context, centerID string, filter StudentFilter) ([]Student, int64, error)
	// SetGroup assigns ids to groupID, or clears the group when groupID is nil.
	SetGroup(ctx context.Context, centerID string, ids []string, groupID *string) error
	ListByGroup(ctx context.Context, centerID, groupID string) ([]Student, error)
}
