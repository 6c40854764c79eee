// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/money"
)

const dateLayout = "2 January 2006"

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"rupiah": money.FormatRupiah,
	"date":   func(t time.Time) string { return t.Format(dateLayout) },
	"deref":  derefString,
}).Parse(invoiceTemplate))

// Service handles PDF generation
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// GenerateInvoice renders the invoice for an order and converts it to PDF.
// It needs the wkhtmltopdf binary on PATH or in WKHTMLTOPDF_PATH.
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderInvoiceHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set(invoiceNumber(o))

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderInvoiceHTML renders the invoice HTML that GenerateInvoice converts
func (s *Service) RenderInvoiceHTML(o *order.Order) (string, error) {
	issued := s.now()
	data := InvoiceData{
		InvoiceNumber: invoiceNumber(o),
		InvoiceDate:   issued.Format(dateLayout),
		DueDate:       issued.AddDate(0, 0, s.config.Invoice.DueDays).Format(dateLayout),
		Order:         o,
		Company: CompanyInfo{
			Name:    s.config.Invoice.CompanyName,
			Address: s.config.Invoice.CompanyAddress,
			Phone:   s.config.Invoice.CompanyPhone,
			Email:   s.config.Invoice.CompanyEmail,
			Website: s.config.Invoice.CompanyWebsite,
		},
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func invoiceNumber(o *order.Order) string {
	return "INV-" + o.OrderNumber
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	Order         *order.Order
	Company       CompanyInfo
}

// CompanyInfo is the seller block
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .company-info { flex: 1; }
        .invoice-info { text-align: right; flex: 1; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .details td { padding: 5px 0; vertical-align: top; }
        .details .label { font-weight: bold; width: 150px; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .items-table .num { text-align: right; }
        .totals { float: right; width: 320px; }
        .totals table { width: 100%; border-collapse: collapse; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; text-align: right; }
        .totals .label { font-weight: bold; }
        .total-row { font-size: 18px; font-weight: bold; }
        .status-badge { display: inline-block; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; text-transform: uppercase; }
        .status-paid { background-color: #dcfce7; color: #166534; }
        .status-pending { background-color: #fef3c7; color: #92400e; }
        .footer { clear: both; margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Phone: {{.Company.Phone}}</p>
            <p>Email: {{.Company.Email}}</p>
            <p>{{.Company.Website}}</p>
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Due Date:</strong> {{.DueDate}}</p>
            <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
        </div>
    </div>

    <table class="details">
        <tr>
            <td class="label">Order Date:</td>
            <td>{{date .Order.CreatedAt}}</td>
        </tr>
        <tr>
            <td class="label">Order Status:</td>
            <td>{{.Order.Status}}</td>
        </tr>
        <tr>
            <td class="label">Payment:</td>
            <td>
                {{.Order.PaymentMethod}}
                <span class="status-badge {{if eq .Order.PaymentStatus "paid"}}status-paid{{else}}status-pending{{end}}">{{.Order.PaymentStatus}}</span>
            </td>
        </tr>
        {{with deref .Order.TrackingNumber}}<tr><td class="label">Tracking:</td><td>{{.}}</td></tr>{{end}}
    </table>

    <div>
        <div class="section-title">Ship To:</div>
        <p><strong>{{.Order.ShippingAddress.RecipientName}}</strong></p>
        <p>{{.Order.ShippingAddress.Street}}</p>
        <p>{{.Order.ShippingAddress.City}}, {{.Order.ShippingAddress.Province}} {{.Order.ShippingAddress.PostalCode}}</p>
        <p>Phone: {{.Order.ShippingAddress.Phone}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="num">Qty</th>
                <th class="num">Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>
                    <strong>{{.ProductName}}</strong>
                    {{with deref .VariantName}}<br><small>{{.}}</small>{{end}}
                </td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{rupiah .Price}}</td>
                <td class="num">{{rupiah .Subtotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td class="label">Subtotal:</td><td>{{rupiah .Order.Subtotal}}</td></tr>
            {{if gt .Order.Discount 0}}
            <tr><td class="label">Discount{{with .Order.CouponCode}} ({{.}}){{end}}:</td><td>-{{rupiah .Order.Discount}}</td></tr>
            {{end}}
            <tr><td class="label">Shipping:</td><td>{{if eq .Order.ShippingCost 0}}Free{{else}}{{rupiah .Order.ShippingCost}}{{end}}</td></tr>
            <tr><td class="label">Tax:</td><td>{{rupiah .Order.Tax}}</td></tr>
            <tr class="total-row"><td class="label">Total:</td><td>{{rupiah .Order.Total}}</td></tr>
        </table>
    </div>

    <div class="footer">
        <p>Thank you for shopping with {{.Company.Name}}!</p>
        <p>Questions about this invoice? Contact us at {{.Company.Email}} or {{.Company.Phone}}</p>
    </div>
</body>
</html>
`
