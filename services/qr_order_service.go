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

// QrOrderService holds guest carts submitted from table QR menus until POS accepts or
// rejects them. Accepting goes through OrderService.CreateOrder with SourceQrOrderID.
type QrOrderService struct {
	db        *gorm.DB
	publisher EventPublisher
	now       func() time.Time
}

func NewQrOrderService(db *gorm.DB, publisher EventPublisher) *QrOrderService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &QrOrderService{db: db, publisher: publisher, now: time.Now}
}

// Submit queues a guest cart for the table. The cart must pass the same stock and menu
// checks as a POS order, but no stock is reserved.
func (s *QrOrderService) Submit(ctx context.Context, tenantID, tableID uint, lines []models.CartLine) (*models.QrOrder, error) {
	if len(lines) == 0 {
		return nil, validationErr("cart is empty")
	}
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, validationErr("line %d: quantity must be at least 1", i+1)
		}
	}

	var qr models.QrOrder
	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, &models.Table{}, tenantID, tableID, "table"); err != nil {
			return err
		}
		resolved, err := resolveCart(tx, tenantID, lines)
		if err != nil {
			return err
		}

		qr = models.QrOrder{TenantID: tenantID, TableID: tableID, CreatedAt: s.now()}
		for _, line := range resolved {
			qr.Lines = append(qr.Lines, models.NewQrOrderLine(line))
		}
		return tx.Create(&qr).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"table_id":    tableID,
		"qr_order_id": qr.ID,
	}).Info("qr order submitted")
	s.publisher.Publish(kds.NewOrder(tenantID))
	return &qr, nil
}

func (s *QrOrderService) Pending(ctx context.Context, tenantID uint) ([]models.QrOrder, error) {
	var pending []models.QrOrder
	err := s.db.WithContext(ctx).
		Preload("Table").
		Preload("Lines.Addons").
		Where("tenant_id = ?", tenantID).
		Order("created_at asc").
		Find(&pending).Error
	return pending, err
}

func (s *QrOrderService) Get(ctx context.Context, tenantID, qrOrderID uint) (*models.QrOrder, error) {
	var qr models.QrOrder
	err := s.db.WithContext(ctx).
		Preload("Lines.Addons").
		Where("id = ? AND tenant_id = ?", qrOrderID, tenantID).
		First(&qr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("qr order %d", qrOrderID)
	}
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (s *QrOrderService) Reject(ctx context.Context, tenantID, qrOrderID uint) error {
	err := s.db.WithContext(detached(ctx)).Transaction(func(tx *gorm.DB) error {
		return deleteQrOrder(tx, tenantID, qrOrderID)
	})
	if err != nil {
		return err
	}
	utils.InfoLogger.WithFields(logrus.Fields{"tenant_id": tenantID, "qr_order_id": qrOrderID}).Info("qr order rejected")
	s.publisher.Publish(kds.OrderUpdate(tenantID))
	return nil
}

// deleteQrOrder removes a pending QR order with its lines. It fails with ErrNotFound when
// another terminal already consumed it.
func deleteQrOrder(tx *gorm.DB, tenantID, qrOrderID uint) error {
	var lineIDs []uint
	if err := tx.Model(&models.QrOrderLine{}).
		Joins("JOIN qr_orders ON qr_orders.id = qr_order_lines.qr_order_id").
		Where("qr_orders.id = ? AND qr_orders.tenant_id = ?", qrOrderID, tenantID).
		Pluck("qr_order_lines.id", &lineIDs).Error; err != nil {
		return err
	}

	res := tx.Where("id = ? AND tenant_id = ?", qrOrderID, tenantID).Delete(&models.QrOrder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundErr("qr order %d", qrOrderID)
	}

	if len(lineIDs) > 0 {
		if err := tx.Where("qr_order_line_id IN ?", lineIDs).Delete(&models.QrOrderLineAddon{}).Error; err != nil {
			return fmt.Errorf("delete qr order addons: %w", err)
		}
		if err := tx.Where("id IN ?", lineIDs).Delete(&models.QrOrderLine{}).Error; err != nil {
			return fmt.Errorf("delete qr order lines: %w", err)
		}
	}
	return nil
}
