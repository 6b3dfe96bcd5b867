package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/utils"
	"gorm.io/gorm"
)

// InvoiceService aggregates orders into payment summaries and immutable invoices.
type InvoiceService struct {
	db        *gorm.DB
	publisher EventPublisher
	now       func() time.Time
}

func NewInvoiceService(db *gorm.DB, publisher EventPublisher) *InvoiceService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &InvoiceService{db: db, publisher: publisher, now: time.Now}
}

type OrderDetail struct {
	OrderID       uint                 `json:"order_id"`
	TokenNo       int                  `json:"token_no"`
	Status        models.ItemStatus    `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Items         []models.OrderItem   `json:"items"`
	Summary       Summary              `json:"summary"`
}

type PaymentSummary struct {
	OrderIDs             []uint           `json:"order_ids"`
	Orders               []OrderDetail    `json:"orders"`
	ServiceChargePercent *decimal.Decimal `json:"service_charge_percent"`
	Totals               Summary          `json:"totals"`
}

type PayResult struct {
	InvoiceID  uint            `json:"invoice_id"`
	CustomerID *uint           `json:"customer_id"`
	Invoice    *models.Invoice `json:"invoice"`
}

// orderSetKey identifies a set of orders regardless of the order the ids were given in.
func orderSetKey(ids []uint) string {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}

func invoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV/%s/%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

// billable drops cancelled items; they are never charged.
func billable(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Status != models.ItemCancelled {
			out = append(out, item)
		}
	}
	return out
}

// summarizeOrders prices each order on its own and the whole set together. The service charge
// appears only in the set totals so it is applied exactly once.
func summarizeOrders(tenant models.Tenant, orders []models.Order) ([]OrderDetail, Summary) {
	details := make([]OrderDetail, 0, len(orders))
	var all []PricingLine
	for _, order := range orders {
		items := billable(order.Items)
		lines := make([]PricingLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, ItemPricingLine(item))
		}
		all = append(all, lines...)

		details = append(details, OrderDetail{
			OrderID:       order.ID,
			TokenNo:       order.TokenNo,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			Items:         items,
			Summary:       Summarize(lines, nil).Rounded(),
		})
	}
	return details, Summarize(all, tenant.ServiceCharge()).Rounded()
}

func (s *InvoiceService) PaymentSummary(ctx context.Context, tenantID uint, orderIDs []uint) (*PaymentSummary, error) {
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return nil, validationErr("no orders given")
	}

	db := s.db.WithContext(ctx)
	tenant, err := findTenant(db, tenantID)
	if err != nil {
		return nil, err
	}
	orders, err := findOrders(db, tenantID, ids, "Items.Addons")
	if err != nil {
		return nil, err
	}

	details, totals := summarizeOrders(tenant, orders)
	return &PaymentSummary{
		OrderIDs:             ids,
		Orders:               details,
		ServiceChargePercent: tenant.ServiceCharge(),
		Totals:               totals,
	}, nil
}

// CreateInvoice invoices orders that are finished in the kitchen. Repeating the call for the
// same set of orders returns the invoice created the first time.
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID uint, orderIDs []uint, paymentTypeID uint) (*models.Invoice, error) {
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return nil, validationErr("no orders given")
	}
	if paymentTypeID == 0 {
		return nil, validationErr("payment type is required")
	}

	key := orderSetKey(ids)
	var invoice *models.Invoice
	created := false
	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		if existing, err := findInvoiceByKey(tx, tenantID, key); err != nil || existing != nil {
			invoice = existing
			return err
		}

		tenant, err := findTenant(tx, tenantID)
		if err != nil {
			return err
		}
		if err := ensureOwned(tx, &models.PaymentType{}, tenantID, paymentTypeID, "payment type"); err != nil {
			return err
		}
		orders, err := findOrders(tx, tenantID, ids, "Items", "Customer")
		if err != nil {
			return err
		}
		for i := range orders {
			if orders[i].InvoiceID != nil {
				return preconditionErr("order %d is already invoiced", orders[i].ID)
			}
			if !orders[i].ReadyToComplete() {
				return preconditionErr("order %d still has items in the kitchen", orders[i].ID)
			}
		}

		invoice, err = s.writeInvoice(tx, tenant, orders, paymentTypeID, key)
		created = err == nil
		return err
	})
	if err != nil {
		if existing := s.lostRace(ctx, tenantID, key); existing != nil {
			return existing, nil
		}
		return nil, err
	}

	if created {
		s.logInvoice(invoice)
		s.publisher.Publish(kds.OrderUpdate(tenantID))
	}
	return invoice, nil
}

// PayAndComplete settles orders in one step: they become paid, completed and invoiced together.
// Unlike CreateInvoice it does not wait for the kitchen; items keep their own status.
func (s *InvoiceService) PayAndComplete(ctx context.Context, tenantID uint, orderIDs []uint, paymentTypeID uint) (*PayResult, error) {
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return nil, validationErr("no orders given")
	}
	if paymentTypeID == 0 {
		return nil, validationErr("payment type is required")
	}

	key := orderSetKey(ids)
	var invoice *models.Invoice
	created, settled := false, false
	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		existing, err := findInvoiceByKey(tx, tenantID, key)
		if err != nil {
			return err
		}
		if existing != nil {
			// the set may have been invoiced without payment
			invoice = existing
			n, err := settleOrders(tx, tenantID, ids, s.now())
			settled = n > 0
			return err
		}

		tenant, err := findTenant(tx, tenantID)
		if err != nil {
			return err
		}
		if err := ensureOwned(tx, &models.PaymentType{}, tenantID, paymentTypeID, "payment type"); err != nil {
			return err
		}
		orders, err := findOrders(tx, tenantID, ids, "Items", "Customer")
		if err != nil {
			return err
		}
		for _, o := range orders {
			if o.InvoiceID != nil {
				return preconditionErr("order %d is already invoiced", o.ID)
			}
			if o.PaymentStatus == models.PaymentPaid {
				return preconditionErr("order %d is already paid", o.ID)
			}
		}

		if _, err := settleOrders(tx, tenantID, ids, s.now()); err != nil {
			return err
		}

		invoice, err = s.writeInvoice(tx, tenant, orders, paymentTypeID, key)
		created = err == nil
		return err
	})
	if err != nil {
		existing := s.lostRace(ctx, tenantID, key)
		if existing == nil {
			return nil, err
		}
		// the winner may have been CreateInvoice, which leaves payment pending
		n, serr := settleOrders(s.db.WithContext(detached(ctx)), tenantID, ids, s.now())
		if serr != nil {
			return nil, serr
		}
		invoice, created, settled = existing, false, n > 0
	}

	if created {
		s.logInvoice(invoice)
	}
	if created || settled {
		s.publisher.Publish(kds.OrderUpdate(tenantID))
	}
	return &PayResult{InvoiceID: invoice.ID, CustomerID: invoice.CustomerID, Invoice: invoice}, nil
}

// settleOrders marks the orders paid and stamps completed_at where it is still unset.
// It reports how many orders changed payment status.
func settleOrders(tx *gorm.DB, tenantID uint, ids []uint, now time.Time) (int64, error) {
	res := tx.Model(&models.Order{}).
		Where("tenant_id = ? AND id IN ? AND payment_status <> ?", tenantID, ids, models.PaymentPaid).
		Updates(map[string]interface{}{"payment_status": models.PaymentPaid, "updated_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := tx.Model(&models.Order{}).
		Where("tenant_id = ? AND id IN ? AND completed_at IS NULL", tenantID, ids).
		Update("completed_at", now).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (s *InvoiceService) writeInvoice(tx *gorm.DB, tenant models.Tenant, orders []models.Order, paymentTypeID uint, key string) (*models.Invoice, error) {
	_, totals := summarizeOrders(tenant, orders)
	now := s.now()

	invoice := models.Invoice{
		TenantID:           tenant.ID,
		OrderSetKey:        key,
		InvoiceNumber:      invoiceNumber(now),
		Subtotal:           totals.ItemsTotal,
		TaxTotal:           totals.TaxTotal,
		ServiceChargeTotal: totals.ServiceChargeTotal,
		Total:              totals.PayableTotal,
		PaymentTypeID:      paymentTypeID,
		CreatedAt:          now,
	}
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		invoice.Orders = append(invoice.Orders, models.InvoiceOrder{OrderID: o.ID})
		if invoice.CustomerID == nil && o.CustomerID != nil {
			invoice.CustomerID = o.CustomerID
			if o.Customer != nil {
				invoice.CustomerName = o.Customer.Name
			}
		}
	}

	if err := tx.Create(&invoice).Error; err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}
	if err := tx.Model(&models.Order{}).Where("id IN ?", ids).Update("invoice_id", invoice.ID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// lostRace returns the invoice a concurrent request committed for the same order set, if any.
func (s *InvoiceService) lostRace(ctx context.Context, tenantID uint, key string) *models.Invoice {
	existing, err := findInvoiceByKey(s.db.WithContext(ctx), tenantID, key)
	if err != nil || existing == nil {
		return nil
	}
	return existing
}

func (s *InvoiceService) logInvoice(invoice *models.Invoice) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":      invoice.TenantID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"order_ids":      invoice.OrderIDs(),
		"total":          utils.FormatCurrency(invoice.Total),
	}).Info("invoice created")
}

func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Orders").
		Preload("PaymentType").
		Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("invoice %d", invoiceID)
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func findInvoiceByKey(db *gorm.DB, tenantID uint, key string) (*models.Invoice, error) {
	var invoices []models.Invoice
	err := db.Preload("Orders").
		Where("tenant_id = ? AND order_set_key = ?", tenantID, key).
		Limit(1).
		Find(&invoices).Error
	if err != nil || len(invoices) == 0 {
		return nil, err
	}
	return &invoices[0], nil
}
