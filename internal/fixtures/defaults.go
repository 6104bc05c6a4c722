// Package fixtures holds the reference data every deployment starts with.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
	"github.com/tutora/tutora-backend/internal/domain/plan"
)

func strPtr(s string) *string { return &s }

// Governorates are keyed by their official code so the upsert is stable.
var Governorates = []governorate.Governorate{
	{ID: 1, Name: "Cairo", NameAr: "القاهرة"},
	{ID: 2, Name: "Alexandria", NameAr: "الإسكندرية"},
	{ID: 3, Name: "Port Said", NameAr: "بورسعيد"},
	{ID: 4, Name: "Suez", NameAr: "السويس"},
	{ID: 11, Name: "Damietta", NameAr: "دمياط"},
	{ID: 12, Name: "Dakahlia", NameAr: "الدقهلية"},
	{ID: 13, Name: "Sharqia", NameAr: "الشرقية"},
	{ID: 14, Name: "Qalyubia", NameAr: "القليوبية"},
	{ID: 15, Name: "Kafr El Sheikh", NameAr: "كفر الشيخ"},
	{ID: 16, Name: "Gharbia", NameAr: "الغربية"},
	{ID: 17, Name: "Monufia", NameAr: "المنوفية"},
	{ID: 18, Name: "Beheira", NameAr: "البحيرة"},
	{ID: 19, Name: "Ismailia", NameAr: "الإسماعيلية"},
	{ID: 21, Name: "Giza", NameAr: "الجيزة"},
	{ID: 22, Name: "Beni Suef", NameAr: "بني سويف"},
	{ID: 23, Name: "Faiyum", NameAr: "الفيوم"},
	{ID: 24, Name: "Minya", NameAr: "المنيا"},
	{ID: 25, Name: "Asyut", NameAr: "أسيوط"},
	{ID: 26, Name: "Sohag", NameAr: "سوهاج"},
	{ID: 27, Name: "Qena", NameAr: "قنا"},
	{ID: 28, Name: "Aswan", NameAr: "أسوان"},
	{ID: 29, Name: "Luxor", NameAr: "الأقصر"},
	{ID: 31, Name: "Red Sea", NameAr: "البحر الأحمر"},
	{ID: 32, Name: "New Valley", NameAr: "الوادي الجديد"},
	{ID: 33, Name: "Matrouh", NameAr: "مطروح"},
	{ID: 34, Name: "North Sinai", NameAr: "شمال سيناء"},
	{ID: 35, Name: "South Sinai", NameAr: "جنوب سيناء"},
}

var AcademicYears = []academicyear.AcademicYear{
	{Name: "Grade 1 Preparatory", SortOrder: 1},
	{Name: "Grade 2 Preparatory", SortOrder: 2},
	{Name: "Grade 3 Preparatory", SortOrder: 3},
	{Name: "Grade 1 Secondary", SortOrder: 4},
	{Name: "Grade 2 Secondary", SortOrder: 5},
	{Name: "Grade 3 Secondary", SortOrder: 6},
}

// Plans are created only when no default plan exists yet. The first one is
// the trial new centers start on.
var Plans = []plan.Plan{
	{
		Name:          "Trial",
		Description:   strPtr("Free trial for new centers"),
		MaxStudents:   20,
		MaxTeachers:   1,
		MaxAssistants: 1,
		Price:         decimal.Zero,
		DurationDays:  14,
		IsActive:      true,
		IsDefault:     true,
		IsTrial:       true,
	},
	{
		Name:          "Basic",
		Description:   strPtr("For a single teacher"),
		MaxStudents:   100,
		MaxTeachers:   1,
		MaxAssistants: 2,
		Price:         decimal.NewFromInt(300),
		DurationDays:  30,
		IsActive:      true,
	},
	{
		Name:          "Pro",
		Description:   strPtr("For small centers"),
		MaxStudents:   500,
		MaxTeachers:   5,
		MaxAssistants: 10,
		Price:         decimal.NewFromInt(1000),
		DurationDays:  30,
		IsActive:      true,
	},
	{
		Name:          "Enterprise",
		Description:   strPtr("For large centers"),
		MaxStudents:   5000,
		MaxTeachers:   50,
		MaxAssistants: 100,
		Price:         decimal.NewFromInt(5000),
		DurationDays:  30,
		IsActive:      true,
	},
}

// Seeder writes the reference data. Every step is idempotent.
type Seeder struct {
	Governorates  governorate.GovernorateRepository
	AcademicYears academicyear.AcademicYearRepository
	Plans         plan.PlanRepository
}

func (s Seeder) Seed(ctx context.Context) error {
	if err := s.Governorates.Upsert(ctx, Governorates); err != nil {
		return fmt.Errorf("seed governorates: %w", err)
	}

	for _, y := range AcademicYears {
		if _, err := s.AcademicYears.Create(ctx, y); err != nil && !errors.Is(err, academicyear.ErrAcademicYearNameExists) {
			return fmt.Errorf("seed academic year %q: %w", y.Name, err)
		}
	}

	if _, err := s.Plans.GetDefault(ctx); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check default plan: %w", err)
	}

	for _, p := range Plans {
		if _, err := s.Plans.Create(ctx, p); err != nil && !errors.Is(err, plan.ErrPlanNameExists) {
			return fmt.Errorf("seed plan %q: %w", p.Name, err)
		}
	}
	slog.Info("default plans seeded", "count", len(Plans))
	return nil
}
