package master

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/group"
	"github.com/tutora/tutora-backend/internal/domain/master/academicyear"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
	"github.com/tutora/tutora-backend/internal/pkg/validator"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
)

type governorateList []governorate.Governorate

func (g governorateList) List(ctx context.Context) ([]governorate.Governorate, error) { return g, nil }
func (g governorateList) Exists(ctx context.Context, id int) (bool, error)            { return false, nil }
func (g governorateList) Upsert(ctx context.Context, govs []governorate.Governorate) error {
	return nil
}

func TestMasterService_ListGovernorates(t *testing.T) {
	svc := NewMasterService(governorateList{
		{ID: 1, Name: "Cairo", NameAr: "القاهرة"},
		{ID: 2, Name: "Giza", NameAr: "الجيزة"},
	}, servicetest.NewStore().AcademicYears())

	govs, err := svc.ListGovernorates(context.Background())
	require.NoError(t, err)
	require.Len(t, govs, 2)
	assert.Equal(t, "Giza", govs[1].Name)
	assert.Equal(t, "الجيزة", govs[1].NameAr)
}

func TestMasterService_AcademicYears(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	svc := NewMasterService(governorateList{}, store.AcademicYears())

	third, err := svc.CreateAcademicYear(ctx, academicyear.CreateAcademicYearRequest{Name: " Third Secondary ", SortOrder: 12})
	require.NoError(t, err)
	assert.Equal(t, "Third Secondary", third.Name)
	first, err := svc.CreateAcademicYear(ctx, academicyear.CreateAcademicYearRequest{Name: "First Secondary", SortOrder: 10})
	require.NoError(t, err)

	_, err = svc.CreateAcademicYear(ctx, academicyear.CreateAcademicYearRequest{Name: "Third Secondary", SortOrder: 1})
	assert.ErrorIs(t, err, academicyear.ErrAcademicYearNameExists)

	_, err = svc.CreateAcademicYear(ctx, academicyear.CreateAcademicYearRequest{Name: "  "})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	years, err := svc.ListAcademicYears(ctx)
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.Equal(t, first.ID, years[0].ID, "ordered by sort_order")

	c, _ := store.AddCenter("Nile Center", nil)
	store.AddGroup(group.Group{CenterID: c.ID, Name: "Physics", AcademicYearID: &third.ID, MaxStudents: 5, PaymentType: group.PaymentTypeMonthly})
	assert.ErrorIs(t, svc.DeleteAcademicYear(ctx, third.ID), academicyear.ErrAcademicYearInUse)

	require.NoError(t, svc.DeleteAcademicYear(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteAcademicYear(ctx, first.ID), academicyear.ErrAcademicYearNotFound)
}
