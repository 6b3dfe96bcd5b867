package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/resto-order-core/models"
	"gorm.io/gorm"
)

type invoiceEnv struct {
	db       *gorm.DB
	f        fixture
	orders   *OrderService
	invoices *InvoiceService
	pub      *recordingPublisher
}

func newInvoiceEnv(t *testing.T, serviceCharge string) invoiceEnv {
	t.Helper()
	db := setupTestDB(t)
	f := seedFixture(t, db)
	if serviceCharge != "" {
		pct := decimal.NewNullDecimal(dec(serviceCharge))
		require.NoError(t, db.Model(&f.Tenant).Update("service_charge_percent", pct).Error)
	}
	pub := &recordingPublisher{}
	return invoiceEnv{db: db, f: f, orders: NewOrderService(db, pub), invoices: NewInvoiceService(db, pub), pub: pub}
}

func (e invoiceEnv) finishItems(t *testing.T, order *models.Order) {
	t.Helper()
	for _, item := range order.Items {
		_, err := e.orders.SetItemStatus(context.Background(), e.f.Tenant.ID, item.ID, models.ItemDelivered)
		require.NoError(t, err)
	}
}

func TestPaymentSummaryAppliesServiceChargeOnce(t *testing.T) {
	env := newInvoiceEnv(t, "10")
	ctx := context.Background()
	a := createTestOrder(t, env.orders, env.f, line(env.f.Burger, 1))
	b := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 1), line(env.f.Tea, 2))

	_, err := env.orders.SetItemStatus(ctx, env.f.Tenant.ID, b.Items[1].ID, models.ItemCancelled)
	require.NoError(t, err)

	summary, err := env.invoices.PaymentSummary(ctx, env.f.Tenant.ID, []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, summary.Orders, 2)

	// burger 200 + 20 tax, one tea 100 net + 10 tax; service 10% of 300
	assertMoney(t, "300", summary.Totals.ItemsTotal)
	assertMoney(t, "30", summary.Totals.TaxTotal)
	assertMoney(t, "30", summary.Totals.ServiceChargeTotal)
	assertMoney(t, "360", summary.Totals.PayableTotal)

	assertMoney(t, "220", summary.Orders[0].Summary.PayableTotal)
	assert.True(t, summary.Orders[0].Summary.ServiceChargeTotal.IsZero())
	assert.Len(t, summary.Orders[1].Items, 1)
	assertMoney(t, "110", summary.Orders[1].Summary.PayableTotal)

	_, err = env.invoices.PaymentSummary(ctx, env.f.Other.ID, []uint{a.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayAndCompleteSettlesOrders(t *testing.T) {
	env := newInvoiceEnv(t, "10")
	ctx := context.Background()
	res, err := env.orders.CreateOrder(ctx, env.f.Tenant.ID, CreateOrderInput{
		Lines:        []models.CartLine{line(env.f.Burger, 2)},
		CustomerType: models.CustomerRegistered,
		CustomerID:   &env.f.Customer.ID,
	})
	require.NoError(t, err)
	other := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 1))
	ids := []uint{res.OrderID, other.ID}

	summary, err := env.invoices.PaymentSummary(ctx, env.f.Tenant.ID, ids)
	require.NoError(t, err)

	paid, err := env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, ids, env.f.Cash.ID)
	require.NoError(t, err)
	require.NotNil(t, paid.CustomerID)
	assert.Equal(t, env.f.Customer.ID, *paid.CustomerID)
	assert.Equal(t, "Budi", paid.Invoice.CustomerName)
	assert.True(t, summary.Totals.PayableTotal.Equal(paid.Invoice.Total))
	assert.True(t, summary.Totals.ServiceChargeTotal.Equal(paid.Invoice.ServiceChargeTotal))
	assert.ElementsMatch(t, ids, paid.Invoice.OrderIDs())
	assert.Regexp(t, `^INV/\d{8}/[0-9A-F]{8}$`, paid.Invoice.InvoiceNumber)

	for _, id := range ids {
		order, err := env.orders.GetOrder(ctx, env.f.Tenant.ID, id)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
		assert.NotNil(t, order.CompletedAt)
		require.NotNil(t, order.InvoiceID)
		assert.Equal(t, paid.InvoiceID, *order.InvoiceID)
		// the kitchen keeps working on its own schedule
		assert.Equal(t, models.ItemCreated, order.Items[0].Status)
	}
	assert.Equal(t, int64(1), countRows(t, env.db, &models.Invoice{}))

	inv, err := env.invoices.GetInvoice(ctx, env.f.Tenant.ID, paid.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "Cash", inv.PaymentType.Title)
	_, err = env.invoices.GetInvoice(ctx, env.f.Other.ID, paid.InvoiceID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayAndCompleteIsIdempotentForTheSameSet(t *testing.T) {
	env := newInvoiceEnv(t, "")
	ctx := context.Background()
	a := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 1))
	b := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 1))

	first, err := env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{a.ID, b.ID}, env.f.Cash.ID)
	require.NoError(t, err)
	again, err := env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{b.ID, a.ID, b.ID}, env.f.Cash.ID)
	require.NoError(t, err)
	assert.Equal(t, first.InvoiceID, again.InvoiceID)
	assert.Equal(t, int64(1), countRows(t, env.db, &models.Invoice{}))

	_, err = env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{a.ID}, env.f.Cash.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestConcurrentPayAndCompleteCreatesOneInvoice(t *testing.T) {
	env := newInvoiceEnv(t, "5")
	ctx := context.Background()
	a := createTestOrder(t, env.orders, env.f)
	b := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 3))

	const n = 6
	var wg sync.WaitGroup
	results := make([]*PayResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{a.ID, b.ID}, env.f.Cash.ID)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].InvoiceID, results[i].InvoiceID)
	}
	assert.Equal(t, int64(1), countRows(t, env.db, &models.Invoice{}))
	assert.Equal(t, int64(2), countRows(t, env.db, &models.InvoiceOrder{}))
}

func TestPayAndCompleteRejectsPaidOrdersAndBadPaymentTypes(t *testing.T) {
	env := newInvoiceEnv(t, "")
	ctx := context.Background()
	order := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 1))

	_, err := env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{order.ID}, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.OtherCash.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, nil, env.f.Cash.ID)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.orders.MarkPaymentStatus(ctx, env.f.Tenant.ID, []uint{order.ID}, models.PaymentPaid))
	_, err = env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Zero(t, countRows(t, env.db, &models.Invoice{}))
}

func TestCreateInvoiceRequiresFinishedKitchen(t *testing.T) {
	env := newInvoiceEnv(t, "10")
	ctx := context.Background()
	order := createTestOrder(t, env.orders, env.f)

	_, err := env.invoices.CreateInvoice(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	env.finishItems(t, order)
	invoice, err := env.invoices.CreateInvoice(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	require.NoError(t, err)
	// burger 200 + 20 tax, tea 110 inclusive, service 10% of 300
	assertMoney(t, "300", invoice.Subtotal)
	assertMoney(t, "30", invoice.TaxTotal)
	assertMoney(t, "30", invoice.ServiceChargeTotal)
	assertMoney(t, "360", invoice.Total)

	again, err := env.invoices.CreateInvoice(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, again.ID)

	got, err := env.orders.GetOrder(ctx, env.f.Tenant.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
	require.NoError(t, env.orders.MarkPaymentStatus(ctx, env.f.Tenant.ID, []uint{order.ID}, models.PaymentPaid))
	assert.ErrorIs(t, env.orders.MarkPaymentStatus(ctx, env.f.Tenant.ID, []uint{order.ID}, models.PaymentPending), ErrPreconditionFailed)
}

func TestPayAndCompleteSettlesInvoicedSet(t *testing.T) {
	env := newInvoiceEnv(t, "")
	ctx := context.Background()
	order := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 1))
	env.finishItems(t, order)

	invoice, err := env.invoices.CreateInvoice(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	require.NoError(t, err)
	before := len(env.pub.Events())

	paid, err := env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, paid.InvoiceID)
	assert.Equal(t, int64(1), countRows(t, env.db, &models.Invoice{}))

	got, err := env.orders.GetOrder(ctx, env.f.Tenant.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.NotNil(t, got.CompletedAt)
	assert.Len(t, env.pub.Events(), before+1)

	// nothing left to settle the second time
	_, err = env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	require.NoError(t, err)
	assert.Len(t, env.pub.Events(), before+1)
}

func TestInvoiceTotalsAreFrozen(t *testing.T) {
	env := newInvoiceEnv(t, "")
	ctx := context.Background()
	order := createTestOrder(t, env.orders, env.f, line(env.f.Tea, 1))

	paid, err := env.invoices.PayAndComplete(ctx, env.f.Tenant.ID, []uint{order.ID}, env.f.Cash.ID)
	require.NoError(t, err)

	err = env.db.Model(paid.Invoice).Update("total", dec("1")).Error
	assert.ErrorIs(t, err, models.ErrInvoiceImmutable)

	require.NoError(t, env.db.Model(&env.f.Tea).Update("price", dec("500")).Error)
	inv, err := env.invoices.GetInvoice(ctx, env.f.Tenant.ID, paid.InvoiceID)
	require.NoError(t, err)
	assertMoney(t, "110", inv.Total)
}

func TestOrderSetKeyIgnoresOrdering(t *testing.T) {
	assert.Equal(t, orderSetKey([]uint{3, 1, 2}), orderSetKey([]uint{1, 2, 3}))
	assert.NotEqual(t, orderSetKey([]uint{1, 2}), orderSetKey([]uint{12}))
}
