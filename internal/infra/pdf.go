package infra

// pdf.go renders a purchase order as an A4 PDF for the supplier email.

import (
	"bytes"
	"fmt"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// RenderPurchaseOrderPDF returns the PDF bytes for po. Details should have
// their Product preloaded; missing products fall back to the product id.
func RenderPurchaseOrderPDF(po *model.PurchaseOrder) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 10, "PURCHASE ORDER", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, po.OrderNumber, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	supplier := po.SupplierID.String()
	if po.Supplier != nil {
		supplier = po.Supplier.Name
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.CellFormat(contentW, 6, tr("Supplier: "+supplier), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Order date: "+po.OrderDate.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Lines ─────────────────────────────────────────────────────────────────
	colName := contentW * 0.50
	colQty := contentW * 0.12
	colPrice := contentW * 0.19
	colTotal := contentW * 0.19

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colName, 7, "Product", "1", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(colPrice, 7, "Unit price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, d := range po.Details {
		name := d.ProductID.String()
		if d.Product != nil {
			name = d.Product.Name
		}
		if len(name) > 48 {
			name = name[:47] + "."
		}
		amount := d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
		pdf.CellFormat(colName, 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 7, fmt.Sprintf("%d", d.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, 7, d.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 7, amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	label := colName + colQty + colPrice
	pdf.CellFormat(label, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 6, po.PlannedSubtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(label, 6, "Tax ("+po.TaxPercent.String()+"%)", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 6, po.TaxAmount.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(label, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, po.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if po.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Notes: "+po.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render purchase order %s: %w", po.OrderNumber, err)
	}
	return buf.Bytes(), nil
}
