package controllers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wealth-horizon/BloomVest/config"
	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/utils"
)

// GET /v1/prices
func GetMetalPrices(c *gin.Context) {
	utils.LogInfo("GetMetalPrices called")

	prices := gin.H{}
	for _, metal := range []string{models.MetalTypeGold, models.MetalTypeSilver} {
		price, err := priceFeed.GetCurrentPrice(c.Request.Context(), metal)
		if err != nil {
			utils.LogError("Failed to resolve price for %s: %v", metal, err)
			continue
		}
		prices[metal] = gin.H{
			"price_per_gram": fmt.Sprintf("%.2f", price),
			"currency":       "INR",
		}
	}

	utils.Success(c, "Current prices retrieved successfully", gin.H{
		"prices":     prices,
		"fetched_at": time.Now().UTC(),
	})
}

// PUT /v1/admin/prices/:metal
func UpdateMetalPrice(c *gin.Context) {
	utils.LogInfo("UpdateMetalPrice called")

	metal := c.Param("metal")
	if !models.ValidMetalType(metal) {
		utils.LogError("Invalid metal type in price update: %q", metal)
		utils.BadRequest(c, "metal must be gold or silver", nil)
		return
	}

	var req struct {
		PricePerGram float64 `json:"price_per_gram" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid price update request: %v", err)
		utils.BadRequest(c, "price_per_gram is required and must be positive", err.Error())
		return
	}

	var price models.MetalPrice
	err := config.DB.Where("type = ?", metal).First(&price).Error
	if err != nil {
		price = models.MetalPrice{Type: metal, PricePerGram: req.PricePerGram}
		if err := config.DB.Create(&price).Error; err != nil {
			utils.LogError("Failed to create price row for %s: %v", metal, err)
			utils.InternalServerError(c, "Failed to update price", err.Error())
			return
		}
	} else {
		if err := config.DB.Model(&price).Update("price_per_gram", req.PricePerGram).Error; err != nil {
			utils.LogError("Failed to update price for %s: %v", metal, err)
			utils.InternalServerError(c, "Failed to update price", err.Error())
			return
		}
	}

	utils.LogInfo("Updated %s price to %.2f per gram", metal, req.PricePerGram)
	utils.Success(c, "Price updated successfully", gin.H{
		"metal_type":     metal,
		"price_per_gram": fmt.Sprintf("%.2f", req.PricePerGram),
	})
}
