package doc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Partition keys. Each document type lives in its own partition so that
// QueryByPartition scans stay bounded to one record family.
const (
	PartitionOrders      = "ordenes"
	PartitionTickets     = "tickets"
	PartitionCancels     = "anulaciones"
	PartitionMovements   = "movimientos"
	PartitionRelations   = "platillo_ingredientes"
	PartitionClosures    = "cierres_z"
	PartitionCounters    = "contadores"
	PartitionDishes      = "platillos"
	PartitionIngredients = "ingredientes"
)

// OrderStatus is the order-level state machine.
//
// pendiente → enviado_cobro → pagada
// pendiente | enviado_cobro → anulada (via approved full cancellation)
//
// pagada and anulada are terminal.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pendiente"
	OrderBilling   OrderStatus = "enviado_cobro"
	OrderPaid      OrderStatus = "pagada"
	OrderCancelled OrderStatus = "anulada"
)

// Terminal reports whether no further order-level transition is legal.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

// ItemStatus is the per-item cancellation state. A single tagged value
// replaces the legacy anulado/en_proceso_anulacion/anulacion_rechazada
// booleans so illegal combinations cannot be stored.
type ItemStatus string

const (
	ItemActive               ItemStatus = "activo"
	ItemPendingCancellation  ItemStatus = "anulacion_pendiente"
	ItemCancelled            ItemStatus = "anulado"
	ItemCancellationRejected ItemStatus = "anulacion_rechazada"
)

// Station identifies the preparation station a dish is routed to.
type Station string

const (
	StationBar     Station = "bar"
	StationKitchen Station = "cocina"
)

// Dispatch records that a preparation station picked up an item.
type Dispatch struct {
	Actor string    `json:"actor"`
	Fecha time.Time `json:"fecha"`
}

// OrderItem is embedded in an Order and addressed by position. Name and
// unit price are snapshots taken when the item was added; later catalog
// edits never change an existing order.
type OrderItem struct {
	PlatilloID     string           `json:"platillo_id"`
	Nombre         string           `json:"nombre"`
	PrecioUnitario decimal.Decimal  `json:"precio_unitario"`
	Cantidad       int              `json:"cantidad"`
	Comentarios    string           `json:"comentarios,omitempty"`
	PromocionID    string           `json:"promocion_id,omitempty"`
	PrecioOriginal *decimal.Decimal `json:"precio_original,omitempty"`
	Estacion       Station          `json:"estacion"`

	Estado ItemStatus `json:"estado"`

	// RechazoMotivo/RechazoActor are populated while Estado is
	// anulacion_rechazada and cleared again on DismissRejection.
	RechazoMotivo string `json:"rechazo_motivo,omitempty"`
	RechazoActor  string `json:"rechazo_actor,omitempty"`

	// Enviado marks that the item has been sent to its preparation
	// station (and its ingredients deducted from stock). Items that were
	// never sent can still be removed without the approval workflow.
	Enviado bool `json:"enviado,omitempty"`

	DespachadoBar    *Dispatch `json:"despachado_bar,omitempty"`
	DespachadoCocina *Dispatch `json:"despachado_cocina,omitempty"`
}

// Counted reports whether the item participates in the order total.
func (it *OrderItem) Counted() bool {
	return it.Estado != ItemCancelled
}

// Dispatched reports whether the item's own station already picked it up.
func (it *OrderItem) Dispatched() bool {
	switch it.Estacion {
	case StationBar:
		return it.DespachadoBar != nil
	case StationKitchen:
		return it.DespachadoCocina != nil
	}
	return it.DespachadoBar != nil || it.DespachadoCocina != nil
}

// Subtotal is cantidad × precio_unitario regardless of status.
func (it *OrderItem) Subtotal() decimal.Decimal {
	return it.PrecioUnitario.Mul(decimal.NewFromInt(int64(it.Cantidad)))
}

// PaymentInfo is the payment detail stamped on MarkPaid.
type PaymentInfo struct {
	Metodo     string          `json:"metodo"`
	Recibido   decimal.Decimal `json:"recibido"`
	Cambio     decimal.Decimal `json:"cambio"`
	Cajero     string          `json:"cajero,omitempty"`
	Propina    decimal.Decimal `json:"propina,omitempty"`
	Referencia string          `json:"referencia,omitempty"`
}

// Order is the shared aggregate mutated by every terminal. Total is cached
// but derived: it must equal the sum of subtotals over counted items after
// every successful mutation.
type Order struct {
	ID          string      `json:"_id"`
	Type        string      `json:"type"`
	Numero      int         `json:"numero_orden"`
	Mesa        string      `json:"mesa"`
	Mesero      string      `json:"mesero"`
	Items       []OrderItem `json:"items"`
	Comentarios string      `json:"comentarios,omitempty"`
	Estado      OrderStatus `json:"estado"`

	// AnulacionPendiente flags a pending full-order cancellation request.
	// It is not a state transition: estado stays untouched until approval.
	AnulacionPendiente bool `json:"anulacion_pendiente,omitempty"`

	Total decimal.Decimal `json:"total"`

	TicketID string `json:"ticket_id,omitempty"`

	FechaCreacion time.Time  `json:"fecha_creacion"`
	FechaPago     *time.Time `json:"fecha_pago,omitempty"`

	// AnuladaPor/FechaAnulacion record the approver of a full cancellation.
	AnuladaPor     string     `json:"anulada_por,omitempty"`
	FechaAnulacion *time.Time `json:"fecha_anulacion,omitempty"`
}

// TypeOrder is the document type discriminator for orders.
const TypeOrder = "orden"

// RecomputeTotal refreshes the cached total from counted items.
func (o *Order) RecomputeTotal() {
	total := decimal.Zero
	for i := range o.Items {
		if o.Items[i].Counted() {
			total = total.Add(o.Items[i].Subtotal())
		}
	}
	o.Total = total
}

// ActiveItemCount returns how many items still participate in the total.
func (o *Order) ActiveItemCount() int {
	n := 0
	for i := range o.Items {
		if o.Items[i].Counted() {
			n++
		}
	}
	return n
}

// Item returns the item at index, or nil when out of range.
func (o *Order) Item(index int) *OrderItem {
	if index < 0 || index >= len(o.Items) {
		return nil
	}
	return &o.Items[index]
}
