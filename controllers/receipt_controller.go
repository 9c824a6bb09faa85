package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/wealth-horizon/BloomVest/config"
	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/utils"
)

// GET /v1/transactions/:orderId/receipt
//
// Generates a PDF payment receipt for a settled transaction.
func DownloadReceipt(c *gin.Context) {
	utils.LogInfo("DownloadReceipt called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("Unauthorized receipt download attempt - no user found in context")
		utils.Unauthorized(c, "Unauthorized")
		return
	}
	user := userVal.(models.User)

	orderID := c.Param("orderId")
	utils.LogInfo("Processing receipt download for order %s, user ID: %d", orderID, user.ID)

	var txn models.Transaction
	if err := config.DB.Where("order_id = ? AND user_id = ?", orderID, user.ID).First(&txn).Error; err != nil {
		utils.LogError("Transaction not found for receipt - Order: %s, User ID: %d", orderID, user.ID)
		utils.NotFound(c, "Transaction not found")
		return
	}

	if txn.Status != models.TransactionStatusSuccess {
		utils.LogError("Receipt requested for unsettled order %s (status: %s)", orderID, txn.Status)
		utils.BadRequest(c, "Receipt is only available for successful payments", nil)
		return
	}

	var investment models.Investment
	weightNote := ""
	if err := config.DB.Where("user_id = ? AND metal_type = ?", user.ID, txn.MetalType).First(&investment).Error; err == nil {
		weightNote = fmt.Sprintf("Total %s holdings: %.4f g", txn.MetalType, investment.WeightInGrams)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "BloomVest")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Digital Gold & Silver Investments")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@bloomvest.in")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(90, 8, "Order ID: "+txn.OrderID)
	pdf.Cell(60, 8, "Date: "+txn.UpdatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(90, 8, "Payment ID: "+txn.CFPaymentID)
	pdf.Cell(60, 8, "Status: "+string(txn.Status))
	pdf.Ln(8)
	pdf.Cell(90, 8, "Customer: "+user.Username)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(60, 8, "Metal", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, "Amount (INR)", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, "User ID", "1", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(60, 8, txn.MetalType, "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, fmt.Sprintf("%.2f", txn.Amount), "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, strconv.FormatUint(uint64(txn.UserID), 10), "1", 1, "", false, 0, "")
	pdf.Ln(8)

	if weightNote != "" {
		pdf.Cell(120, 8, weightNote)
		pdf.Ln(8)
	}
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(150, 8, "This is a system generated receipt and does not require a signature.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to generate receipt PDF for order %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to generate receipt", err.Error())
		return
	}

	utils.LogInfo("Receipt generated for order %s", orderID)
	c.Header("Content-Disposition", "attachment; filename=receipt-"+txn.OrderID+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
