package postgresql

import (
	"context"
	"fmt"

	"github.com/tutora/tutora-backend/internal/domain/dashboard"
	"github.com/tutora/tutora-backend/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetCounts returns students, groups, teachers and assistants in a single query
func (r *dashboardRepositoryImpl) GetCounts(ctx context.Context, centerID string, teacherID *string) (dashboard.Counts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM students WHERE center_id = $1 AND ($2::uuid IS NULL OR teacher_id = $2)),
			(SELECT COUNT(*) FROM groups WHERE center_id = $1 AND ($2::uuid IS NULL OR teacher_id = $2)),
			(SELECT COUNT(*) FROM users WHERE center_id = $1 AND role = 'teacher' AND ($2::uuid IS NULL OR id = $2)),
			(SELECT COUNT(*) FROM users WHERE center_id = $1 AND role = 'assistant' AND ($2::uuid IS NULL OR teacher_id = $2))
	`

	var c dashboard.Counts
	err := q.QueryRow(ctx, query, centerID, teacherID).Scan(&c.Students, &c.Groups, &c.Teachers, &c.Assistants)
	if err != nil {
		return dashboard.Counts{}, fmt.Errorf("failed to get dashboard counts: %w", err)
	}
	return c, nil
}
