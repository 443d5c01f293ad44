package main

import (
	"fmt"

	"github.com/shopora/internal/config"
	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "electronics", Name: "Electronics", SortOrder: 300},
		{Slug: "home-kitchen", Name: "Home & Kitchen", SortOrder: 200},
		{Slug: "accessories", Name: "Accessories", SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "home-kitchen", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	electronicsID := categoryIDs["electronics"]
	homeKitchenID := categoryIDs["home-kitchen"]
	accessoriesID := categoryIDs["accessories"]

	// 添加商品
	products := []models.Product{
		{
			Slug:        "wireless-earphones",
			Title:       "Wireless Bluetooth Earphones",
			Description: "High quality sound, long battery life, comfortable to wear.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Quantity:    120,
			CategoryID:  electronicsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			}),
			Tags:      models.StringArray([]string{"Audio", "Wireless", "Headphones"}),
			IsActive:  true,
			SortOrder: 400,
		},
		{
			Slug:        "smart-watch",
			Title:       "Smart Watch",
			Description: "Health monitoring, fitness tracking, message notifications.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			Quantity:    60,
			CategoryID:  electronicsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800",
			}),
			Tags:      models.StringArray([]string{"Wearable", "Health", "Smart"}),
			IsActive:  true,
			SortOrder: 390,
		},
		{
			Slug:        "power-bank",
			Title:       "Portable Power Bank",
			Description: "High capacity, fast charging, multi-device compatible.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
			Quantity:    200,
			CategoryID:  accessoriesID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=800",
			}),
			Tags:      models.StringArray([]string{"Charger", "Portable", "Accessory"}),
			IsActive:  true,
			SortOrder: 380,
		},
		{
			Slug:        "espresso-maker",
			Title:       "Compact Espresso Maker",
			Description: "15-bar pump, quick heat-up, easy to clean.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(129.00)),
			Quantity:    35,
			CategoryID:  homeKitchenID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1510017803434-a899398421b3?w=800",
			}),
			Tags:      models.StringArray([]string{"Coffee", "Kitchen"}),
			IsActive:  true,
			SortOrder: 370,
		},
		{
			Slug:        "backpack",
			Title:       "Multi-function Backpack",
			Description: "Large capacity, waterproof and anti-theft, USB charging port.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(79.99)),
			Quantity:    80,
			CategoryID:  accessoriesID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800",
			}),
			Tags:      models.StringArray([]string{"Bag", "Travel"}),
			IsActive:  true,
			SortOrder: 360,
		},
		{
			Slug:        "demo-sold-out",
			Title:       "Demo Product - Sold Out",
			Description: "For stock badge and disabled purchase demo: zero remaining stock.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(29.90)),
			Quantity:    0,
			CategoryID:  accessoriesID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1512499617640-c74ae3a79d37?w=800",
			}),
			Tags:      models.StringArray([]string{"Demo", "SoldOut"}),
			IsActive:  true,
			SortOrder: 100,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Title = prod.Title
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.Quantity = prod.Quantity
			existing.CategoryID = prod.CategoryID
			existing.Images = prod.Images
			existing.Tags = prod.Tags
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 6 Products (含售罄演示商品)")
}
