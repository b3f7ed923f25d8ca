package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func textFormatter() *OutputFormatter {
	return NewFormatter("text", "es", &bytes.Buffer{})
}

func sampleOrder() *doc.Order {
	order := &doc.Order{
		ID:     "orden:test",
		Type:   doc.TypeOrder,
		Numero: 7,
		Mesa:   "5",
		Mesero: "carlos",
		Estado: doc.OrderPending,
		Items: []doc.OrderItem{
			{Nombre: "Ceviche", Cantidad: 2, PrecioUnitario: decimal.RequireFromString("5.00"),
				Estacion: doc.StationKitchen, Estado: doc.ItemActive},
			{Nombre: "Cerveza", Cantidad: 1, PrecioUnitario: decimal.RequireFromString("8.00"),
				Estacion: doc.StationBar, Estado: doc.ItemCancelled},
			{Nombre: "Agua mineral", Cantidad: 3, PrecioUnitario: decimal.RequireFromString("1.50"),
				Estacion: doc.StationBar, Estado: doc.ItemCancellationRejected,
				RechazoActor: "ops-1", RechazoMotivo: "ya servido"},
		},
	}
	order.RecomputeTotal()
	return order
}

func TestRenderOrder(t *testing.T) {
	out := textFormatter().RenderOrder(sampleOrder())
	golden(t).Assert(t, "order_pending", []byte(out))
}

func TestRenderTicket(t *testing.T) {
	paid := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	ticket := &doc.Ticket{
		ID:          "ticket:test",
		Type:        doc.TypeTicket,
		NumeroOrden: 7,
		Mesa:        "5",
		Estado:      doc.TicketPaid,
		Items: []doc.OrderItem{
			{Nombre: "Ceviche", Cantidad: 2, PrecioUnitario: decimal.RequireFromString("5.00")},
			{Nombre: "Agua mineral", Cantidad: 3, PrecioUnitario: decimal.RequireFromString("1.50")},
		},
		Total:     decimal.RequireFromString("14.50"),
		FechaPago: &paid,
		Pago: &doc.PaymentInfo{
			Metodo:   "efectivo",
			Recibido: decimal.RequireFromString("20.00"),
			Cambio:   decimal.RequireFromString("5.50"),
		},
	}
	out := textFormatter().RenderTicket(ticket)
	golden(t).Assert(t, "ticket_paid", []byte(out))
}

func TestRenderClosure(t *testing.T) {
	closure := &doc.Closure{
		Numero:     3,
		Fecha:      "2024-06-01",
		Actor:      "admin-1",
		NumTickets: 2,
		Total:      decimal.RequireFromString("34.50"),
		Ordenes:    []int{12, 15},
	}
	out := textFormatter().RenderClosure(closure)
	golden(t).Assert(t, "closure", []byte(out))
}

func TestRenderClosureEmpty(t *testing.T) {
	closure := &doc.Closure{
		Numero: 4,
		Fecha:  "2024-06-02",
		Actor:  "admin-1",
		Total:  decimal.Zero,
	}
	out := textFormatter().RenderClosure(closure)
	golden(t).Assert(t, "closure_empty", []byte(out))
}

func TestSuccessJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("json", "es", &buf)
	require.NoError(t, f.Success(sampleOrder()))

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	var order doc.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	assert.Equal(t, 7, order.Numero)
	assert.Len(t, order.Items, 3)
}

func TestErrorJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("json", "es", &buf)
	opErr := &pos.OpError{
		Code:      pos.ErrCodeConcurrentModification,
		Message:   "document changed since it was read; reload and retry",
		OrderID:   "orden:test",
		ItemIndex: -1,
	}
	require.NoError(t, f.Error(opErr))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONCURRENT_MODIFICATION", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "reload and retry")
}

func TestErrorTextFallbackCode(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("text", "es", &buf)
	require.NoError(t, f.Error(errors.New("disk on fire")))
	assert.Contains(t, buf.String(), "Error [ERROR]: disk on fire")
}

func TestExitErrorCodes(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitFailure, "operation failed", errors.New("cause"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), "operation failed: cause")
	assert.EqualError(t, errors.Unwrap(wrapped), "cause")
}
