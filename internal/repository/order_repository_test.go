package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopora/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.Delivery{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestUpdateStatusIfOnlyMovesMatchingStatus(t *testing.T) {
	db := setupOrderRepoDB(t)
	repo := NewOrderRepository(db)

	order := &models.Order{
		OrderNo:          fmt.Sprintf("SO-%d", time.Now().UnixNano()),
		UserID:           3,
		PaymentSessionID: fmt.Sprintf("cs_%d", time.Now().UnixNano()),
		Status:           "processing",
		PaymentStatus:    "completed",
		Currency:         "USD",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	now := time.Now()
	affected, err := repo.UpdateStatusIf(order.ID, "processing", "cancelled", map[string]interface{}{
		"cancelled_at": now,
	})
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("first transition affected want 1 got %d", affected)
	}

	// 状态已被写走后重复迁移不再命中
	affected, err = repo.UpdateStatusIf(order.ID, "processing", "cancelled", nil)
	if err != nil {
		t.Fatalf("second transition failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second transition affected want 0 got %d", affected)
	}

	reloaded, err := repo.GetByID(order.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != "cancelled" {
		t.Fatalf("status want cancelled got %s", reloaded.Status)
	}
	if reloaded.CancelledAt == nil {
		t.Fatal("cancelled_at should be set")
	}
}
