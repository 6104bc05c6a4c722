package dashboard

import "context"

// Counts holds the entity totals shown on the dashboard
type Counts struct {
	Students   int
	Groups     int
	Teachers   int
	Assistants int
}

type DashboardRepository interface {
	// GetCounts counts the center's entities, narrowed to one teacher when teacherID is set
	GetCounts(ctx context.Context, centerID string, teacherID *string) (Counts, error)
}
