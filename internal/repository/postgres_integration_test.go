//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/shopora/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Refund{},
		&models.Delivery{},
		&models.OrderItem{},
		&models.Order{},
		&models.Product{},
		&models.Category{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Delivery{},
		&models.Refund{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductStockRoundTrip(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewProductRepository(db)

	product := &models.Product{
		CategoryID: 1,
		Slug:       "pg-widget",
		Title:      "Widget",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(19)),
		Quantity:   10,
		IsActive:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	affected, err := repo.DecrementStock(product.ID, 3)
	if err != nil || affected != 1 {
		t.Fatalf("decrement failed: affected=%d err=%v", affected, err)
	}
	affected, err = repo.CreditStock(product.ID, 3)
	if err != nil || affected != 1 {
		t.Fatalf("credit failed: affected=%d err=%v", affected, err)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Quantity != 10 {
		t.Fatalf("quantity want 10 got %d", got.Quantity)
	}
}

func TestPostgresRefundStockAddedBackCAS(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewRefundRepository(db)

	refund := &models.Refund{
		RefundNo:  "RF-PG-1",
		OrderID:   1,
		ProductID: 1,
		UserID:    1,
		Quantity:  1,
		Status:    "approved",
	}
	if err := db.Create(refund).Error; err != nil {
		t.Fatalf("create refund failed: %v", err)
	}

	affected, err := repo.MarkStockAddedBack(refund.ID)
	if err != nil || affected != 1 {
		t.Fatalf("first mark failed: affected=%d err=%v", affected, err)
	}
	affected, err = repo.MarkStockAddedBack(refund.ID)
	if err != nil {
		t.Fatalf("second mark failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second mark should affect 0 rows, got %d", affected)
	}
}
