package doc

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus tracks the billing snapshot lifecycle.
type TicketStatus string

const (
	TicketIssued TicketStatus = "emitido"
	TicketPaid   TicketStatus = "pagado"
)

// TypeTicket is the document type discriminator for tickets.
const TypeTicket = "ticket"

// Ticket is the immutable billing snapshot taken when an order is sent to
// payment. Items are copied (counted items only) so later edits to the
// order never change what was billed. The only mutation a ticket sees is
// the payment stamp.
type Ticket struct {
	ID          string          `json:"_id"`
	Type        string          `json:"type"`
	OrdenID     string          `json:"orden_id"`
	NumeroOrden int             `json:"numero_orden"`
	Mesa        string          `json:"mesa"`
	Mesero      string          `json:"mesero"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Estado      TicketStatus    `json:"estado"`

	FechaEmision time.Time    `json:"fecha_emision"`
	FechaPago    *time.Time   `json:"fecha_pago,omitempty"`
	Pago         *PaymentInfo `json:"pago,omitempty"`
}
