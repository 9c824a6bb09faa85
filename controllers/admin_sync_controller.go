package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"github.com/wealth-horizon/BloomVest/config"
	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/utils"
)

// POST /v1/admin/transactions/sync
//
// Polling fallback for missed webhooks: reconciles every pending
// transaction and returns a per-order summary for operator follow-up.
func SyncTransactions(c *gin.Context) {
	utils.LogInfo("SyncTransactions called")

	var userID uint
	if rawUser := c.Query("user_id"); rawUser != "" {
		parsed, err := strconv.ParseUint(rawUser, 10, 32)
		if err != nil {
			utils.LogError("Invalid user_id filter in sync request: %q", rawUser)
			utils.BadRequest(c, "user_id must be a positive integer", nil)
			return
		}
		userID = uint(parsed)
	}

	summary, err := sweeper.SweepPending(c.Request.Context(), userID)
	if err != nil {
		utils.LogError("Sweep failed: %v", err)
		utils.InternalServerError(c, "Failed to sync transactions", err.Error())
		return
	}

	utils.LogInfo("Sync complete: checked %d, applied %d, failed %d", summary.Checked, summary.Applied, len(summary.Failed))
	utils.Success(c, "Transactions synced", summary)
}

// GET /v1/admin/transactions/export
//
// Downloads all transactions for a period as an Excel workbook.
func ExportTransactionsExcel(c *gin.Context) {
	utils.LogInfo("ExportTransactionsExcel called")

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating Excel export for period: %s", period)

	now := time.Now()
	var startDate, endDate time.Time

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var transactions []models.Transaction
	query := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Order("created_at DESC")
	if err := query.Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions for export: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d transactions for Excel export", len(transactions))

	var totalAmount float64
	var successCount, pendingCount, failedCount int
	for _, txn := range transactions {
		switch txn.Status {
		case models.TransactionStatusSuccess:
			successCount++
			totalAmount += txn.Amount
		case models.TransactionStatusFailed:
			failedCount++
		default:
			pendingCount++
		}
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to generate report", err.Error())
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"Order ID", "User ID", "Metal", "Amount (INR)", "Status", "CF Payment ID", "Created At", "Updated At"} {
		header.AddCell().Value = title
	}

	for _, txn := range transactions {
		row := sheet.AddRow()
		row.AddCell().Value = txn.OrderID
		row.AddCell().Value = strconv.FormatUint(uint64(txn.UserID), 10)
		row.AddCell().Value = txn.MetalType
		row.AddCell().Value = fmt.Sprintf("%.2f", txn.Amount)
		row.AddCell().Value = string(txn.Status)
		row.AddCell().Value = txn.CFPaymentID
		row.AddCell().Value = txn.CreatedAt.Format("2006-01-02 15:04:05")
		row.AddCell().Value = txn.UpdatedAt.Format("2006-01-02 15:04:05")
	}

	sheet.AddRow()
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().Value = "Summary"
	summaryRow.AddCell().Value = fmt.Sprintf("success: %d", successCount)
	summaryRow.AddCell().Value = fmt.Sprintf("pending: %d", pendingCount)
	summaryRow.AddCell().Value = fmt.Sprintf("failed: %d", failedCount)
	summaryRow.AddCell().Value = fmt.Sprintf("settled amount: %.2f", totalAmount)

	filename := fmt.Sprintf("transactions-%s-%s.xlsx", period, now.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write report", err.Error())
		return
	}
	utils.LogInfo("Excel export generated: %s (%d rows)", filename, len(transactions))
}
