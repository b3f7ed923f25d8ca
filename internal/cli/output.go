package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // operation failure (invalid state, conflict, ...)
	ExitCommandError = 2 // command error (bad paths, database not found, ...)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Printer *message.Printer
}

// NewFormatter builds a formatter for the configured locale.
func NewFormatter(format, locale string, w io.Writer) *OutputFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &OutputFormatter{
		Format:  format,
		Writer:  w,
		Printer: message.NewPrinter(tag),
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success outputs a successful result in the configured format. In text
// mode, data types with dedicated renderers get a receipt-style layout.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	switch v := data.(type) {
	case *doc.Order:
		fmt.Fprint(f.Writer, f.RenderOrder(v))
	case *doc.Ticket:
		fmt.Fprint(f.Writer, f.RenderTicket(v))
	case *doc.Closure:
		fmt.Fprint(f.Writer, f.RenderClosure(v))
	default:
		fmt.Fprintln(f.Writer, data)
	}
	return nil
}

// Error outputs an error in the configured format. POS operation errors
// carry their taxonomy code through.
func (f *OutputFormatter) Error(err error) error {
	code := "ERROR"
	var oe *pos.OpError
	if errors.As(err, &oe) {
		code = string(oe.Code)
	}
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: err.Error()},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, err.Error())
	return nil
}

func (f *OutputFormatter) money(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return f.Printer.Sprintf("%.2f", v)
}

// RenderOrder renders an order in terminal layout.
func (f *OutputFormatter) RenderOrder(o *doc.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ORDEN #%d  mesa %s  mesero %s  [%s]\n", o.Numero, o.Mesa, o.Mesero, o.Estado)
	if o.AnulacionPendiente {
		b.WriteString("  ** anulacion de orden pendiente de aprobacion **\n")
	}
	for i := range o.Items {
		it := &o.Items[i]
		marker := " "
		switch it.Estado {
		case doc.ItemCancelled:
			marker = "x"
		case doc.ItemPendingCancellation:
			marker = "?"
		case doc.ItemCancellationRejected:
			marker = "!"
		}
		fmt.Fprintf(&b, "  %d. [%s] %dx %-24s %10s\n", i, marker, it.Cantidad, it.Nombre, f.money(it.Subtotal()))
		if it.Estado == doc.ItemCancellationRejected {
			fmt.Fprintf(&b, "        anulacion rechazada por %s: %s\n", it.RechazoActor, it.RechazoMotivo)
		}
	}
	fmt.Fprintf(&b, "  TOTAL %36s\n", f.money(o.Total))
	return b.String()
}

// RenderTicket renders a billing snapshot in receipt layout.
func (f *OutputFormatter) RenderTicket(t *doc.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TICKET orden #%d  mesa %s  [%s]\n", t.NumeroOrden, t.Mesa, t.Estado)
	for i := range t.Items {
		it := &t.Items[i]
		fmt.Fprintf(&b, "  %dx %-28s %10s\n", it.Cantidad, it.Nombre, f.money(it.Subtotal()))
	}
	fmt.Fprintf(&b, "  TOTAL %36s\n", f.money(t.Total))
	if t.Pago != nil {
		fmt.Fprintf(&b, "  pago: %s  recibido %s  cambio %s\n",
			t.Pago.Metodo, f.money(t.Pago.Recibido), f.money(t.Pago.Cambio))
	}
	return b.String()
}

// RenderClosure renders a Z-report.
func (f *OutputFormatter) RenderClosure(c *doc.Closure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CIERRE Z #%d  fecha %s  por %s\n", c.Numero, c.Fecha, c.Actor)
	fmt.Fprintf(&b, "  tickets: %d\n", c.NumTickets)
	fmt.Fprintf(&b, "  total:   %s\n", f.money(c.Total))
	if c.Empty() {
		b.WriteString("  (sin ventas en el periodo)\n")
		return b.String()
	}
	b.WriteString("  ordenes:")
	for _, n := range c.Ordenes {
		fmt.Fprintf(&b, " %d", n)
	}
	b.WriteString("\n")
	return b.String()
}
