package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/models"
)

func TestQrOrderAcceptedIntoOrder(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	pub := &recordingPublisher{}
	qrs := NewQrOrderService(db, pub)
	orders := NewOrderService(db, pub)
	ctx := context.Background()

	sel := line(f.Burger, 1)
	sel.AddonIDs = []uint{f.Cheese.ID}
	qr, err := qrs.Submit(ctx, f.Tenant.ID, f.Table.ID, []models.CartLine{sel, line(f.Tea, 2)})
	require.NoError(t, err)
	assert.Equal(t, []kds.Event{kds.NewOrder(f.Tenant.ID)}, pub.Events())

	pending, err := qrs.Pending(ctx, f.Tenant.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "A1", pending[0].Table.TableNumber)

	stored, err := qrs.Get(ctx, f.Tenant.ID, qr.ID)
	require.NoError(t, err)
	lines := make([]models.CartLine, 0, len(stored.Lines))
	for _, l := range stored.Lines {
		lines = append(lines, l.CartLine())
	}
	assert.Equal(t, []uint{f.Cheese.ID}, lines[0].AddonIDs)

	res, err := orders.CreateOrder(ctx, f.Tenant.ID, CreateOrderInput{
		Lines:           lines,
		TableID:         &f.Table.ID,
		SourceQrOrderID: &qr.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, res.OrderID)

	pending, err = qrs.Pending(ctx, f.Tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Zero(t, countRows(t, db, &models.QrOrderLine{}))
	assert.Zero(t, countRows(t, db, &models.QrOrderLineAddon{}))

	// a second terminal accepting the same QR order loses
	_, err = orders.CreateOrder(ctx, f.Tenant.ID, CreateOrderInput{Lines: lines, SourceQrOrderID: &qr.ID})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(1), countRows(t, db, &models.Order{}))
}

func TestQrOrderSubmitIsAdmissionChecked(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	qrs := NewQrOrderService(db, nil)
	ctx := context.Background()

	_, err := qrs.Submit(ctx, f.Tenant.ID, f.Table.ID, []models.CartLine{line(f.Burger, 11)})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	_, err = qrs.Submit(ctx, f.Tenant.ID, f.Table.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = qrs.Submit(ctx, f.Other.ID, f.Table.ID, []models.CartLine{line(f.Tea, 1)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, countRows(t, db, &models.QrOrder{}))
}

func TestQrOrderReject(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	qrs := NewQrOrderService(db, nil)
	ctx := context.Background()

	qr, err := qrs.Submit(ctx, f.Tenant.ID, f.Table.ID, []models.CartLine{line(f.Tea, 1)})
	require.NoError(t, err)

	assert.ErrorIs(t, qrs.Reject(ctx, f.Other.ID, qr.ID), ErrNotFound)
	require.NoError(t, qrs.Reject(ctx, f.Tenant.ID, qr.ID))
	assert.ErrorIs(t, qrs.Reject(ctx, f.Tenant.ID, qr.ID), ErrNotFound)

	_, err = qrs.Get(ctx, f.Tenant.ID, qr.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
