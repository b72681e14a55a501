// Package pdf renders printable documents with maroto.
package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceLine is one printed row of the invoice table, already formatted.
type InvoiceLine struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

// InvoiceDocument carries everything the invoice layout prints. Money
// fields arrive formatted; the renderer does no arithmetic.
type InvoiceDocument struct {
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string

	InvoiceNumber string
	OrderNumber   string
	Status        string
	IssueDate     string
	DueDate       string

	BillToName    string
	BillToAddress string
	BillToPhone   string

	Lines []InvoiceLine

	Subtotal string
	Tax      string
	Total    string
}

// Renderer produces printable documents.
type Renderer interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

type renderer struct{}

// New returns the maroto-backed Renderer.
func New() Renderer {
	return &renderer{}
}

func (r *renderer) RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Invoice "+doc.InvoiceNumber, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Order: "+doc.OrderNumber, props.Text{Top: 0}),
			text.New("Issued: "+doc.IssueDate, props.Text{Top: 4}),
			text.New("Due: "+doc.DueDate, props.Text{Top: 8}),
			text.New("Status: "+doc.Status, props.Text{Top: 12}),
		),
		col.New(6),
	)

	m.AddRow(35,
		col.New(6).Add(
			text.New(doc.BusinessName, props.Text{Style: fontstyle.Bold}),
			text.New(doc.BusinessAddress, props.Text{Top: 5}),
			text.New(doc.BusinessPhone, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.BillToName, props.Text{Top: 5}),
			text.New(doc.BillToAddress, props.Text{Top: 10}),
			text.New(doc.BillToPhone, props.Text{Top: 15}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range doc.Lines {
		m.AddRow(8,
			text.NewCol(6, line.Description, props.Text{Size: 9}),
			text.NewCol(2, line.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, line.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, doc.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Size: 9}),
		text.NewCol(2, doc.Tax, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, doc.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}
