package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/wealth-horizon/BloomVest/config"
	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/utils"
)

// GET /v1/investments
func GetUserInvestments(c *gin.Context) {
	utils.LogInfo("GetUserInvestments called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	utils.LogInfo("Fetching investments for user ID: %d", user.ID)

	var investments []models.Investment
	if err := config.DB.Where("user_id = ?", user.ID).Find(&investments).Error; err != nil {
		utils.LogError("Failed to fetch investments for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch investments", err.Error())
		return
	}

	holdings := make([]gin.H, 0, len(investments))
	var totalInvested, totalValue float64
	for _, inv := range investments {
		currentPrice, err := priceFeed.GetCurrentPrice(c.Request.Context(), inv.MetalType)
		if err != nil {
			utils.LogError("No price for %s while valuing holdings: %v", inv.MetalType, err)
			currentPrice = 0
		}
		currentValue := inv.WeightInGrams * currentPrice
		totalInvested += inv.TotalAmount
		totalValue += currentValue

		holdings = append(holdings, gin.H{
			"metal_type":      inv.MetalType,
			"total_amount":    fmt.Sprintf("%.2f", inv.TotalAmount),
			"weight_in_grams": fmt.Sprintf("%.4f", inv.WeightInGrams),
			"price_per_gram":  fmt.Sprintf("%.2f", currentPrice),
			"current_value":   fmt.Sprintf("%.2f", currentValue),
			"updated_at":      inv.UpdatedAt,
		})
	}

	utils.LogInfo("Retrieved %d holding(s) for user ID: %d", len(holdings), user.ID)
	utils.Success(c, "Investments retrieved successfully", gin.H{
		"holdings":       holdings,
		"total_invested": fmt.Sprintf("%.2f", totalInvested),
		"current_value":  fmt.Sprintf("%.2f", totalValue),
	})
}

// GET /v1/transactions
func GetTransactionHistory(c *gin.Context) {
	utils.LogInfo("GetTransactionHistory called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	utils.LogInfo("Fetching transaction history for user ID: %d", user.ID)

	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Transaction{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if metal := c.Query("metal_type"); metal != "" {
		query = query.Where("metal_type = ?", metal)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count transactions for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}
	pagination.SetTotal(total)

	var transactions []models.Transaction
	if err := query.Order("created_at DESC").Offset(pagination.Offset).Limit(pagination.Limit).Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}

	utils.LogInfo("Retrieved %d transaction(s) for user ID: %d", len(transactions), user.ID)
	utils.SendPaginatedResponse(c, transactions, pagination)
}
