package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"isaraya-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	calls atomic.Int32
	err   error
}

func (f *fakeOrders) List(ctx context.Context) ([]models.Order, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []models.Order{{ID: "o1", UserID: "u1", Status: models.OrderStatusDelivered}}, nil
}

type fakeProducts struct{}

func (fakeProducts) List(ctx context.Context) ([]models.Product, error) {
	return []models.Product{{ID: "p1"}, {ID: "p2"}}, nil
}

type fakeUsers struct{}

func (fakeUsers) List(ctx context.Context) ([]models.User, error) {
	return []models.User{{ID: "u1"}}, nil
}

type fakeCategories struct{}

func (fakeCategories) List(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c1", Name: "Home"}}, nil
}

func newTestStore(orders *fakeOrders) *Store {
	return New(Sources{
		Orders:     orders,
		Products:   fakeProducts{},
		Users:      fakeUsers{},
		Categories: fakeCategories{},
	})
}

func TestRefreshLoadsSnapshot(t *testing.T) {
	s := newTestStore(&fakeOrders{})
	assert.False(t, s.Snapshot().Loaded())

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Loaded())
	assert.Equal(t, uint64(1), snap.Version)
	assert.Len(t, snap.Orders, 1)
	assert.Len(t, snap.Products, 2)
	assert.Len(t, snap.Users, 1)
	assert.Len(t, snap.Categories, 1)
	assert.Equal(t, snap, s.Snapshot())

	snap, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Version)
}

func TestRefreshRunsHooks(t *testing.T) {
	s := newTestStore(&fakeOrders{})

	var seen []uint64
	s.OnRefresh(func(snap Snapshot) { seen = append(seen, snap.Version) })

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	_, err = s.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	orders := &fakeOrders{}
	s := newTestStore(orders)

	hooks := 0
	s.OnRefresh(func(Snapshot) { hooks++ })

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	orders.err = fmt.Errorf("connection reset")
	snap, err := s.Refresh(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, uint64(1), s.Snapshot().Version)
	assert.Equal(t, 1, hooks)
}

func TestRefresherTicks(t *testing.T) {
	orders := &fakeOrders{}
	s := newTestStore(orders)

	r := NewRefresher(s, 10*time.Millisecond)
	r.Start()

	require.Eventually(t, func() bool {
		return s.Snapshot().Version >= 2
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	calls := orders.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, orders.calls.Load(), "no refresh after Stop")
}
