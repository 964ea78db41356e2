package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-core/internal/model"
)

func TestAreAvailable(t *testing.T) {
	products := newFakeProductRepo()
	checker := NewAvailability(products)
	shopID := primitive.NewObjectID()

	owned := products.addProduct(&model.Product{ShopID: shopID, Name: "owned", IsPublished: true})
	foreign := products.addProduct(&model.Product{ShopID: primitive.NewObjectID(), Name: "foreign", IsPublished: true})
	draft := products.addProduct(&model.Product{ShopID: shopID, Name: "draft", IsPublished: false})

	cases := []struct {
		name string
		ids  []primitive.ObjectID
		want bool
	}{
		{"all owned and live", []primitive.ObjectID{owned.ID}, true},
		{"foreign product", []primitive.ObjectID{owned.ID, foreign.ID}, false},
		{"unpublished product", []primitive.ObjectID{owned.ID, draft.ID}, false},
		{"missing product", []primitive.ObjectID{owned.ID, primitive.NewObjectID()}, false},
		{"empty set", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := checker.AreAvailable(context.Background(), tc.ids, shopID)
			if err != nil {
				t.Fatalf("AreAvailable failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("AreAvailable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestArePublishedIgnoresOwnership(t *testing.T) {
	products := newFakeProductRepo()
	checker := NewAvailability(products)

	a := products.addProduct(&model.Product{ShopID: primitive.NewObjectID(), Name: "a", IsPublished: true})
	b := products.addProduct(&model.Product{ShopID: primitive.NewObjectID(), Name: "b", IsPublished: true})

	ok, err := checker.ArePublished(context.Background(), []primitive.ObjectID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("ArePublished failed: %v", err)
	}
	if !ok {
		t.Error("cross-shop live products should pass the publish-only check")
	}

	products.products[b.ID].IsDeleted = true
	ok, err = checker.ArePublished(context.Background(), []primitive.ObjectID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("ArePublished failed: %v", err)
	}
	if ok {
		t.Error("a soft-deleted product should fail the publish-only check")
	}
}
