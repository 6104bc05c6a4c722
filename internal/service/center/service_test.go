package center

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutora/tutora-backend/internal/domain/center"
	"github.com/tutora/tutora-backend/internal/domain/master/governorate"
	"github.com/tutora/tutora-backend/internal/domain/tenant"
	"github.com/tutora/tutora-backend/internal/domain/user"
	"github.com/tutora/tutora-backend/internal/service/servicetest"
)

type governorateStub []governorate.Governorate

func (g governorateStub) List(ctx context.Context) ([]governorate.Governorate, error) { return g, nil }
func (g governorateStub) Exists(ctx context.Context, id int) (bool, error) {
	for _, gov := range g {
		if gov.ID == id {
			return true, nil
		}
	}
	return false, nil
}
func (g governorateStub) Upsert(ctx context.Context, govs []governorate.Governorate) error {
	return nil
}

func newCenterService(store *servicetest.Store) center.CenterService {
	return NewCenterService(store.Centers(), governorateStub{{ID: 1, Name: "Cairo", NameAr: "القاهرة"}})
}

func TestCenterService_GetMyCenter(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	svc := newCenterService(store)
	c, owner := store.AddCenter("Nile Center", nil)

	resp, err := svc.GetMyCenter(ctx, servicetest.ScopeOf(owner))
	require.NoError(t, err)
	assert.Equal(t, c.ID, resp.ID)
	assert.Equal(t, "Nile Center", resp.Name)
	require.NotNil(t, resp.OwnerID)
	assert.Equal(t, owner.ID, *resp.OwnerID)

	_, err = svc.GetMyCenter(ctx, tenant.Scope{UserID: "platform", Role: user.RoleAdmin})
	assert.ErrorIs(t, err, tenant.ErrNoCenter)
}

func TestCenterService_UpdateMyCenter(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	svc := newCenterService(store)
	c, owner := store.AddCenter("Nile Center", nil)
	scope := servicetest.ScopeOf(owner)

	name := "  Nile Learning Center "
	gov := 1
	resp, err := svc.UpdateMyCenter(ctx, scope, center.UpdateCenterRequest{Name: &name, GovernorateID: &gov})
	require.NoError(t, err)
	assert.Equal(t, "Nile Learning Center", resp.Name)
	require.NotNil(t, resp.GovernorateID)
	assert.Equal(t, 1, *resp.GovernorateID)

	blank := "   "
	_, err = svc.UpdateMyCenter(ctx, scope, center.UpdateCenterRequest{Name: &blank})
	assert.ErrorIs(t, err, center.ErrInvalidCenterName)

	unknown := 99
	_, err = svc.UpdateMyCenter(ctx, scope, center.UpdateCenterRequest{GovernorateID: &unknown})
	assert.ErrorIs(t, err, governorate.ErrGovernorateNotFound)

	teacher := store.AddUser(user.User{CenterID: &c.ID, Name: "Mr. Hassan", Role: user.RoleTeacher})
	_, err = svc.UpdateMyCenter(ctx, servicetest.ScopeOf(teacher), center.UpdateCenterRequest{Name: &name})
	assert.ErrorIs(t, err, user.ErrCenterAdminRequired)
}

func TestCenterService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := servicetest.NewStore()
	svc := newCenterService(store)
	nile, _ := store.AddCenter("Nile Center", nil)
	store.AddCenter("Delta Center", nil)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Delete(ctx, nile.ID))
	assert.ErrorIs(t, svc.Delete(ctx, nile.ID), center.ErrCenterNotFound)

	all, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Delta Center", all[0].Name)
}
