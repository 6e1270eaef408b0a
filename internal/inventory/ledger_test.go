package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mercaly/mercaly-backend/pkg/db/models"
	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
)

func TestReserve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	product := uuid.New()

	seedStock(t, db, product, 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		return led.Reserve(ctx, tx, product, 3)
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if got := loadStock(t, db, product).AvailableQty; got != 7 {
		t.Fatalf("available_qty = %d, want 7", got)
	}
}

func TestReserveShortage(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	product := uuid.New()

	seedStock(t, db, product, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return led.Reserve(ctx, tx, product, 5)
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected shortage details, got %T", typed.Details())
	}
	if details["available"] != 2 || details["requested"] != 5 {
		t.Fatalf("unexpected shortage details: %v", details)
	}

	// a failed reservation must not touch the count
	if got := loadStock(t, db, product).AvailableQty; got != 2 {
		t.Fatalf("available_qty = %d, want 2", got)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		return led.Reserve(ctx, tx, uuid.New(), 1)
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestReserveInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	led := NewLedger()

	err := led.Reserve(context.Background(), db, uuid.New(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSequentialReservationsNeverOversell(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	product := uuid.New()

	seedStock(t, db, product, 10)

	granted := 0
	for i := 0; i < 8; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return led.Reserve(ctx, tx, product, 3)
		})
		if err == nil {
			granted += 3
			continue
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
			t.Fatalf("unexpected error on iteration %d: %v", i, err)
		}
	}

	remaining := loadStock(t, db, product).AvailableQty
	if granted+remaining != 10 {
		t.Fatalf("granted %d + remaining %d != seeded 10", granted, remaining)
	}
	if remaining < 0 {
		t.Fatalf("available_qty went negative: %d", remaining)
	}
}

func TestReleaseRestoresReservedUnits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	product := uuid.New()

	seedStock(t, db, product, 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := led.Reserve(ctx, tx, product, 4); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return led.Release(ctx, tx, product, 4)
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}

	if got := loadStock(t, db, product).AvailableQty; got != 10 {
		t.Fatalf("available_qty = %d, want 10", got)
	}
}

func TestReleaseUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	led := NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		return led.Release(context.Background(), tx, uuid.New(), 1)
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func seedStock(t *testing.T, db *gorm.DB, productID uuid.UUID, qty int) {
	t.Helper()
	if err := db.Create(&models.ProductStock{ProductID: productID, AvailableQty: qty}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func loadStock(t *testing.T, db *gorm.DB, productID uuid.UUID) models.ProductStock {
	t.Helper()
	var stock models.ProductStock
	if err := db.First(&stock, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return stock
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.ProductStock{}); err != nil {
		t.Fatalf("migrate product stock: %v", err)
	}
	return db
}
