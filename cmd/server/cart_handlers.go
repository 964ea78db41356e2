package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-core/internal/model"
	"shop-core/internal/service"
)

// addToCartHandler handles POST /api/cart
func addToCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		cart, err := svc.AddToCart(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// getCartHandler handles GET /api/cart?user_id=
func getCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		cart, err := svc.GetCart(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// updateCartHandler handles PATCH /api/cart
func updateCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		diff, err := svc.UpdateCart(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, diff)
	}
}

// decreaseFromCartHandler handles POST /api/cart/decrease
func decreaseFromCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.DecreaseFromCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		cart, err := svc.DecreaseFromCart(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// deleteProductFromCartHandler handles DELETE /api/cart/item?user_id=&sku_id=
func deleteProductFromCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		skuID := c.Query("sku_id")
		if userID == "" || skuID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and sku_id are required"})
			return
		}

		cart, err := svc.DeleteProductFromCart(c.Request.Context(), userID, skuID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// deleteProductsFromCartHandler handles DELETE /api/cart/items
func deleteProductsFromCartHandler(svc *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.DeleteProductsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		removed, err := svc.DeleteProductsFromCart(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": removed})
	}
}
