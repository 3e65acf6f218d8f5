package orders

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/models"
	"restaurant-dashboard/statemachine"
	"restaurant-dashboard/views"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct {
	calls []apiclient.StatusChange
	err   error
	at    time.Time
}

func (f *fakeUpdater) UpdateOrderStatus(ctx context.Context, id uint, change apiclient.StatusChange) (*models.Order, error) {
	f.calls = append(f.calls, change)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: id, Status: change.Status, UpdatedAt: f.at}, nil
}

func seeded(statuses ...models.OrderStatus) FetchFunc {
	return func(ctx context.Context) ([]models.Order, error) {
		out := make([]models.Order, len(statuses))
		for i, s := range statuses {
			out[i] = models.Order{ID: uint(i + 1), Status: s, TotalAmount: decimal.NewFromInt(10)}
		}
		return out, nil
	}
}

func TestChangeStatus_ForwardUpdatesLocalEntry(t *testing.T) {
	up := &fakeUpdater{at: time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)}
	b := NewBoard(models.RoleChef, seeded(models.StatusPending), up)
	ctx := context.Background()
	require.NoError(t, b.Fetch(ctx))

	got, err := b.ChangeStatus(ctx, 1, models.StatusPreparing, false, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, got.Status)
	assert.True(t, got.UpdatedAt.Equal(up.at))

	snap := b.Snapshot()
	assert.Equal(t, models.StatusPreparing, snap.Rows[0].Status)
	assert.Equal(t, []models.OrderStatus{models.StatusReady, models.StatusCancelled}, snap.Rows[0].Next)
	assert.Equal(t, views.LevelSuccess, snap.Notice.Level)
}

func TestChangeStatus_BackwardRejectedWithoutNetwork(t *testing.T) {
	up := &fakeUpdater{}
	b := NewBoard(models.RoleAdmin, seeded(models.StatusDelivered), up)
	ctx := context.Background()
	require.NoError(t, b.Fetch(ctx))

	_, err := b.ChangeStatus(ctx, 1, models.StatusPending, false, "")
	assert.ErrorIs(t, err, statemachine.ErrTerminal)
	assert.Empty(t, up.calls)
	assert.Equal(t, models.StatusDelivered, b.Orders()[0].Status)
}

func TestChangeStatus_AdminOverride(t *testing.T) {
	up := &fakeUpdater{}
	b := NewBoard(models.RoleAdmin, seeded(models.StatusDelivered), up)
	ctx := context.Background()
	require.NoError(t, b.Fetch(ctx))

	_, err := b.ChangeStatus(ctx, 1, models.StatusPending, true, "wrong button")
	require.NoError(t, err)
	require.Len(t, up.calls, 1)
	assert.True(t, up.calls[0].Override)
	assert.Equal(t, models.StatusPending, b.Orders()[0].Status)
}

func TestChangeStatus_OverrideDeniedForStaff(t *testing.T) {
	b := NewBoard(models.RoleDriver, seeded(models.StatusDelivered), &fakeUpdater{})
	require.NoError(t, b.Fetch(context.Background()))
	_, err := b.ChangeStatus(context.Background(), 1, models.StatusShipping, true, "")
	assert.ErrorIs(t, err, statemachine.ErrOverrideDenied)
}

func TestChangeStatus_ServerFailureKeepsPriorStatus(t *testing.T) {
	up := &fakeUpdater{err: &apiclient.HTTPError{Status: http.StatusConflict, Message: "order was cancelled"}}
	b := NewBoard(models.RoleDriver, seeded(models.StatusReady), up)
	ctx := context.Background()
	require.NoError(t, b.Fetch(ctx))

	_, err := b.ChangeStatus(ctx, 1, models.StatusShipping, false, "")
	require.Error(t, err)
	snap := b.Snapshot()
	assert.Equal(t, models.StatusReady, snap.Rows[0].Status)
	assert.Equal(t, "order was cancelled", snap.Notice.Message)
}

func TestChangeStatus_UnknownOrder(t *testing.T) {
	b := NewBoard(models.RoleChef, seeded(), &fakeUpdater{})
	require.NoError(t, b.Fetch(context.Background()))
	_, err := b.ChangeStatus(context.Background(), 9, models.StatusPreparing, false, "")
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestFetch_FailureKeepsList(t *testing.T) {
	calls := 0
	b := NewBoard(models.RoleAdmin, func(ctx context.Context) ([]models.Order, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("timeout")
		}
		return seeded(models.StatusPending, models.StatusDelivered)(ctx)
	}, &fakeUpdater{})

	require.NoError(t, b.Fetch(context.Background()))
	require.Error(t, b.Fetch(context.Background()))

	snap := b.Snapshot()
	assert.Len(t, snap.Rows, 2)
	assert.Equal(t, 1, snap.Stats.ByStatus[models.StatusDelivered])
	assert.Equal(t, "timeout", snap.Notice.Message)
}
