package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop-core/internal/model"
	"shop-core/internal/service"
)

// createDiscountHandler handles POST /api/discounts
func createDiscountHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		discount, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, discount)
	}
}

// updateDiscountHandler handles PATCH /api/discounts/:id
func updateDiscountHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		discount, err := svc.Update(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, discount)
	}
}

// getDiscountHandler handles GET /api/discounts/:id
func getDiscountHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		discount, err := svc.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, discount)
	}
}

// listDiscountsHandler handles GET /api/discounts?shop_id=&limit=&skip=
func listDiscountsHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID := c.Query("shop_id")
		if shopID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
			return
		}
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)

		discounts, err := svc.ListByShop(c.Request.Context(), shopID, limit, skip)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, discounts)
	}
}

// listDiscountProductsHandler handles GET /api/discounts/:id/products
func listDiscountProductsHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.ListProducts(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// computeAmountHandler handles POST /api/discounts/amount
func computeAmountHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ComputeAmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		quote, err := svc.ComputeAmount(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

// useDiscountHandler handles POST /api/discounts/use
func useDiscountHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UseDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := svc.Use(c.Request.Context(), &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "discount used successfully"})
	}
}

// cancelDiscountHandler handles POST /api/discounts/:id/cancel
func cancelDiscountHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Cancel(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "discount cancelled"})
	}
}

// deleteDiscountHandler handles DELETE /api/discounts/:id?shop_id=
func deleteDiscountHandler(svc *service.DiscountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		shopID := c.Query("shop_id")
		if shopID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
			return
		}

		deleted, err := svc.Delete(c.Request.Context(), c.Param("id"), shopID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": deleted})
	}
}
