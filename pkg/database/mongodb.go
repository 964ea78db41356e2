package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes a connection to MongoDB
func Connect(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(uri)

	// Set connection timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)

	mongoDB := &MongoDB{
		Client:   client,
		Database: db,
	}

	// Create indexes
	if err := mongoDB.CreateIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

// CreateIndexes creates all necessary indexes for the application
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	// One code string per owner scope; the window-overlap rule is enforced in
	// the service because it cannot be expressed as a unique index.
	discounts := m.Database.Collection("discounts")
	codeOwnerIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "code", Value: 1},
			{Key: "shop_id", Value: 1},
			{Key: "start_date", Value: 1},
		},
		Options: options.Index().SetName("discount_code_owner"),
	}
	if _, err := discounts.Indexes().CreateOne(ctx, codeOwnerIndex); err != nil {
		return fmt.Errorf("failed to create discount code index: %w", err)
	}

	usages := m.Database.Collection("discount_usages")
	usageDiscountIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "discount_id", Value: 1}},
		Options: options.Index().SetName("usage_discount_id"),
	}
	if _, err := usages.Indexes().CreateOne(ctx, usageDiscountIndex); err != nil {
		return fmt.Errorf("failed to create usage discount index: %w", err)
	}
	usageUserIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "discount_id", Value: 1},
		},
		Options: options.Index().SetName("usage_user_discount"),
	}
	if _, err := usages.Indexes().CreateOne(ctx, usageUserIndex); err != nil {
		return fmt.Errorf("failed to create usage user index: %w", err)
	}

	// One cart per user
	carts := m.Database.Collection("carts")
	cartUserIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("cart_user_unique"),
	}
	if _, err := carts.Indexes().CreateOne(ctx, cartUserIndex); err != nil {
		return fmt.Errorf("failed to create cart user index: %w", err)
	}

	products := m.Database.Collection("products")
	productShopIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "shop_id", Value: 1}},
		Options: options.Index().SetName("product_shop_id"),
	}
	if _, err := products.Indexes().CreateOne(ctx, productShopIndex); err != nil {
		return fmt.Errorf("failed to create product shop index: %w", err)
	}

	skus := m.Database.Collection("skus")
	skuProductIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}},
		Options: options.Index().SetName("sku_product_id"),
	}
	if _, err := skus.Indexes().CreateOne(ctx, skuProductIndex); err != nil {
		return fmt.Errorf("failed to create sku product index: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
