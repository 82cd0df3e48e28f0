package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/order"
)

// GormOrderStore persists orders through gorm.
type GormOrderStore struct {
	db *gorm.DB
}

// NewMySQLOrderStore opens the MySQL database and migrates the order tables.
func NewMySQLOrderStore(cfg *config.MySQLConfig) (*GormOrderStore, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	return NewGormOrderStore(db)
}

// NewGormOrderStore wraps an open gorm connection.
func NewGormOrderStore(db *gorm.DB) (*GormOrderStore, error) {
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate order tables: %w", err)
	}
	return &GormOrderStore{db: db}, nil
}

func (s *GormOrderStore) InsertOrder(ctx context.Context, customer order.CustomerInfo, total int64, status order.Status) (*order.Order, error) {
	row := models.NewOrder(customer, total, status)
	row.ID = uuid.NewString()

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}

	created := row.Domain()
	return &created, nil
}

func (s *GormOrderStore) InsertOrderItems(ctx context.Context, orderID string, items []order.Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := models.NewOrderItems(orderID, items)
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *GormOrderStore) ListOrders(ctx context.Context) ([]order.Order, error) {
	var rows []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].Domain()
	}
	return orders, nil
}

func (s *GormOrderStore) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) error {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status.String())
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return order.ErrNotFound
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (s *GormOrderStore) DeleteOrder(ctx context.Context, orderID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", orderID).Delete(&models.Order{}).Error
	})
}

func (s *GormOrderStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormOrderStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
