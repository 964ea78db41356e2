package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the read-side view of a catalog product (SPU). The catalog
// service owns this collection; this core only consults publish state,
// ownership and the display fields snapshotted into carts.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ShopID      primitive.ObjectID `bson:"shop_id" json:"shop_id"`
	Name        string             `bson:"name" json:"name"`
	Price       int64              `bson:"price" json:"price"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	IsPublished bool               `bson:"is_published" json:"is_published"`
	IsDeleted   bool               `bson:"is_deleted" json:"is_deleted"`
}

// Sellable reports whether the product is live for shoppers.
func (p *Product) Sellable() bool {
	return p.IsPublished && !p.IsDeleted
}

// SKU is the read-side view of a sellable variant. Stock is the authoritative
// number cart mutations validate against.
type SKU struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Price     int64              `bson:"price" json:"price"`
	Stock     int64              `bson:"stock" json:"stock"`
	IsDeleted bool               `bson:"is_deleted" json:"is_deleted"`
}
