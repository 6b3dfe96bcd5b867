package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/resto-order-core/kds"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/utils"
	"gorm.io/gorm"
)

// EventPublisher receives invalidation events after a change is committed.
type EventPublisher interface {
	Publish(kds.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(kds.Event) {}

// detached keeps request values but drops cancellation: once an order operation starts it
// runs to commit or rollback, never half way.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// OrderService owns the order and order-item lifecycle.
type OrderService struct {
	db        *gorm.DB
	publisher EventPublisher
	now       func() time.Time
}

func NewOrderService(db *gorm.DB, publisher EventPublisher) *OrderService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &OrderService{db: db, publisher: publisher, now: time.Now}
}

type CreateOrderInput struct {
	Lines           []models.CartLine    `json:"lines"`
	DeliveryType    *models.DeliveryType `json:"delivery_type"`
	CustomerType    models.CustomerType  `json:"customer_type"`
	CustomerID      *uint                `json:"customer_id"`
	TableID         *uint                `json:"table_id"`
	SourceQrOrderID *uint                `json:"source_qr_order_id"`
}

func (in *CreateOrderInput) validate() error {
	if len(in.Lines) == 0 {
		return validationErr("cart is empty")
	}
	for i, line := range in.Lines {
		if line.MenuItemID == 0 {
			return validationErr("line %d: menu item is required", i+1)
		}
		if line.Quantity < 1 {
			return validationErr("line %d: quantity must be at least 1", i+1)
		}
	}
	if in.DeliveryType != nil && !in.DeliveryType.Valid() {
		return validationErr("unknown delivery type %q", *in.DeliveryType)
	}

	switch in.CustomerType {
	case "":
		in.CustomerType = models.CustomerWalkin
		fallthrough
	case models.CustomerWalkin:
		if in.CustomerID != nil {
			return validationErr("walk-in orders cannot reference a customer")
		}
	case models.CustomerRegistered:
		if in.CustomerID == nil {
			return validationErr("customer is required for customer orders")
		}
	default:
		return validationErr("unknown customer type %q", in.CustomerType)
	}
	return nil
}

type CreateOrderResult struct {
	OrderID uint `json:"order_id"`
	TokenNo int  `json:"token_no"`
}

// CreateOrder persists the order and its items in one transaction, allocating the day's
// next token and consuming the originating QR order if there is one.
func (s *OrderService) CreateOrder(ctx context.Context, tenantID uint, in CreateOrderInput) (*CreateOrderResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result CreateOrderResult
	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		tenant, err := findTenant(tx, tenantID)
		if err != nil {
			return err
		}
		if in.CustomerID != nil {
			if err := ensureOwned(tx, &models.Customer{}, tenantID, *in.CustomerID, "customer"); err != nil {
				return err
			}
		}
		if in.TableID != nil {
			if err := ensureOwned(tx, &models.Table{}, tenantID, *in.TableID, "table"); err != nil {
				return err
			}
		}

		lines, err := resolveCart(tx, tenantID, in.Lines)
		if err != nil {
			return err
		}

		if in.SourceQrOrderID != nil {
			if err := deleteQrOrder(tx, tenantID, *in.SourceQrOrderID); err != nil {
				return err
			}
		}

		now := s.now()
		day := tokenDay(tenant, now)
		token, err := nextToken(tx, tenantID, day)
		if err != nil {
			return fmt.Errorf("allocate token: %w", err)
		}

		order := models.Order{
			TenantID:      tenantID,
			TokenNo:       token,
			TokenDay:      day,
			DeliveryType:  in.DeliveryType,
			CustomerType:  in.CustomerType,
			CustomerID:    in.CustomerID,
			TableID:       in.TableID,
			Status:        models.ItemCreated,
			PaymentStatus: models.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for _, line := range lines {
			item := models.NewOrderItem(line)
			item.CreatedAt = now
			item.UpdatedAt = now
			order.Items = append(order.Items, item)
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		result = CreateOrderResult{OrderID: order.ID, TokenNo: token}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"order_id":  result.OrderID,
		"token_no":  result.TokenNo,
		"lines":     len(in.Lines),
	}).Info("order created")
	s.publisher.Publish(kds.NewOrder(tenantID))
	return &result, nil
}

// resolveCart prices every line and checks the whole cart against stock at once, so two
// lines drawing on the same ingredient are admitted only if stock covers both.
func resolveCart(tx *gorm.DB, tenantID uint, selections []models.CartLine) ([]models.CartLine, error) {
	ids := make([]uint, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.MenuItemID)
	}
	items, err := loadMenuItems(tx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	ledger := stockLedger{}
	lines := make([]models.CartLine, 0, len(selections))
	for _, sel := range selections {
		item := items[sel.MenuItemID]
		line, err := ResolveLine(item, sel)
		if err != nil {
			return nil, err
		}
		ledger.add(item, line.Quantity, line.SelectedVariant(), line.AddonIDs)
		lines = append(lines, line)
	}
	if !ledger.satisfied() {
		return nil, fmt.Errorf("%w: stock does not cover the cart", ErrInsufficientStock)
	}
	return lines, nil
}

// SetItemStatus moves one item along the kitchen workflow. The write is a compare-and-set on
// the status just read, so a stale terminal can never revive a finished item.
func (s *OrderService) SetItemStatus(ctx context.Context, tenantID, itemID uint, status models.ItemStatus) (*models.OrderItem, error) {
	if !status.Valid() {
		return nil, validationErr("unknown item status %q", status)
	}

	var item models.OrderItem
	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("order item %d", itemID)
			}
			return err
		}
		if err := ensureOwned(tx, &models.Order{}, tenantID, item.OrderID, "order item"); err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundErr("order item %d", itemID)
			}
			return err
		}

		if item.Status.Terminal() {
			return transitionErr("item %d is already %s", item.ID, item.Status)
		}
		if !models.CanTransition(item.Status, status) {
			return transitionErr("item %d cannot move from %s to %s", item.ID, item.Status, status)
		}

		now := s.now()
		res := tx.Model(&models.OrderItem{}).
			Where("id = ? AND status = ?", item.ID, item.Status).
			Updates(map[string]interface{}{"status": status, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return transitionErr("item %d was changed by another terminal", item.ID)
		}
		item.Status = status
		item.UpdatedAt = now

		return refreshOrderStatus(tx, item.OrderID, now)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"order_id":  item.OrderID,
		"item_id":   item.ID,
		"status":    status,
	}).Info("order item status changed")
	s.publisher.Publish(kds.OrderUpdate(tenantID))
	return &item, nil
}

func refreshOrderStatus(tx *gorm.DB, orderID uint, now time.Time) error {
	var raw []string
	if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Pluck("status", &raw).Error; err != nil {
		return err
	}
	statuses := make([]models.ItemStatus, len(raw))
	for i, s := range raw {
		statuses[i] = models.ItemStatus(s)
	}
	return tx.Model(&models.Order{}).Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": models.DeriveOrderStatus(statuses), "updated_at": now}).Error
}

// CancelOrder is the operator override: every item of every order becomes cancelled,
// whatever the kitchen already did. It deliberately bypasses the item workflow.
func (s *OrderService) CancelOrder(ctx context.Context, tenantID uint, orderIDs []uint) error {
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return validationErr("no orders given")
	}

	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		if _, err := findOrders(tx, tenantID, ids); err != nil {
			return err
		}
		now := s.now()
		if err := tx.Model(&models.OrderItem{}).Where("order_id IN ?", ids).
			Updates(map[string]interface{}{"status": models.ItemCancelled, "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id IN ?", ids).
			Updates(map[string]interface{}{"status": models.ItemCancelled, "updated_at": now}).Error
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"tenant_id": tenantID, "order_ids": ids}).Warn("orders cancelled by operator")
	s.publisher.Publish(kds.OrderUpdate(tenantID))
	return nil
}

// CompleteOrder closes orders whose items are all terminal. It does not invoice.
func (s *OrderService) CompleteOrder(ctx context.Context, tenantID uint, orderIDs []uint) error {
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return validationErr("no orders given")
	}

	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		orders, err := findOrders(tx, tenantID, ids, "Items")
		if err != nil {
			return err
		}
		for i := range orders {
			if !orders[i].ReadyToComplete() {
				return preconditionErr("order %d still has items in the kitchen", orders[i].ID)
			}
		}
		now := s.now()
		return tx.Model(&models.Order{}).Where("id IN ? AND completed_at IS NULL", ids).
			Updates(map[string]interface{}{"completed_at": now, "updated_at": now}).Error
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"tenant_id": tenantID, "order_ids": ids}).Info("orders completed")
	s.publisher.Publish(kds.OrderUpdate(tenantID))
	return nil
}

// MarkPaymentStatus is idempotent: orders already in the requested status are left alone.
func (s *OrderService) MarkPaymentStatus(ctx context.Context, tenantID uint, orderIDs []uint, status models.PaymentStatus) error {
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return validationErr("no orders given")
	}
	if !status.Valid() {
		return validationErr("unknown payment status %q", status)
	}

	var changed int64
	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		orders, err := findOrders(tx, tenantID, ids)
		if err != nil {
			return err
		}
		if status == models.PaymentPending {
			for _, o := range orders {
				if o.InvoiceID != nil {
					return preconditionErr("order %d is invoiced and cannot return to pending", o.ID)
				}
			}
		}
		res := tx.Model(&models.Order{}).Where("id IN ? AND payment_status <> ?", ids, status).
			Updates(map[string]interface{}{"payment_status": status, "updated_at": s.now()})
		changed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}

	if changed > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{"tenant_id": tenantID, "order_ids": ids, "payment_status": status}).Info("payment status changed")
		s.publisher.Publish(kds.OrderUpdate(tenantID))
	}
	return nil
}

// OrderFilter narrows ListOrders. Zero values mean "any".
type OrderFilter struct {
	Status        models.ItemStatus
	PaymentStatus models.PaymentStatus
	TableID       uint
	Day           string
	// OpenOnly keeps orders that are neither completed nor cancelled.
	OpenOnly      bool
}

func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items.Addons").
		Preload("Customer").
		Preload("Table").
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("order %d", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, tenantID uint, filter OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items.Addons").Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.TableID != 0 {
		q = q.Where("table_id = ?", filter.TableID)
	}
	if filter.Day != "" {
		q = q.Where("token_day = ?", filter.Day)
	}
	if filter.OpenOnly {
		q = q.Where("completed_at IS NULL AND status <> ?", models.ItemCancelled)
	}

	var orders []models.Order
	if err := q.Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// KitchenQueue returns orders with work left, oldest first, carrying only their active items.
func (s *OrderService) KitchenQueue(ctx context.Context, tenantID uint) ([]models.Order, error) {
	active := []models.ItemStatus{models.ItemCreated, models.ItemPreparing}

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", "status IN ?", active).
		Preload("Items.Addons").
		Preload("Table").
		Where("tenant_id = ? AND status IN ?", tenantID, active).
		Order("created_at asc").
		Order("id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func findTenant(tx *gorm.DB, tenantID uint) (models.Tenant, error) {
	var tenant models.Tenant
	if err := tx.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tenant, notFoundErr("tenant %d", tenantID)
		}
		return tenant, err
	}
	return tenant, nil
}

// ensureOwned checks that a tenant-scoped row exists for this tenant.
func ensureOwned(tx *gorm.DB, model interface{}, tenantID, id uint, what string) error {
	var count int64
	if err := tx.Model(model).Where("id = ? AND tenant_id = ?", id, tenantID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundErr("%s %d", what, id)
	}
	return nil
}

// findOrders loads the tenant's orders by id and fails with ErrNotFound if any is missing.
func findOrders(tx *gorm.DB, tenantID uint, ids []uint, preloads ...string) ([]models.Order, error) {
	q := tx
	for _, p := range preloads {
		q = q.Preload(p)
	}

	var orders []models.Order
	if err := q.Where("tenant_id = ? AND id IN ?", tenantID, ids).Order("id asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) != len(ids) {
		found := make(map[uint]bool, len(orders))
		for _, o := range orders {
			found[o.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, notFoundErr("order %d", id)
			}
		}
	}
	return orders, nil
}
