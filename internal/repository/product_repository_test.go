package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopora/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createTestProduct(t *testing.T, db *gorm.DB, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: 1,
		Slug:       fmt.Sprintf("widget-%d", time.Now().UnixNano()),
		Title:      "Widget",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(19)),
		Quantity:   quantity,
		IsActive:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestDecrementStockGuardsAgainstOversell(t *testing.T) {
	db := setupProductRepoDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, 5)

	affected, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	affected, err = repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("second decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("oversell should affect 0 rows, got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", got.Quantity)
	}
}

func TestCreditStockRestoresQuantity(t *testing.T) {
	db := setupProductRepoDB(t)
	repo := NewProductRepository(db)
	product := createTestProduct(t, db, 2)

	affected, err := repo.CreditStock(product.ID, 4)
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Fatalf("quantity want 6 got %d", got.Quantity)
	}
}

func TestDecrementStockRejectsInvalidParams(t *testing.T) {
	db := setupProductRepoDB(t)
	repo := NewProductRepository(db)

	if _, err := repo.DecrementStock(0, 1); err == nil {
		t.Fatal("zero product id should fail")
	}
	if _, err := repo.DecrementStock(1, 0); err == nil {
		t.Fatal("zero quantity should fail")
	}
	if _, err := repo.CreditStock(1, -2); err == nil {
		t.Fatal("negative quantity should fail")
	}
}
