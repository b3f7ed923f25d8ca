package doc

import "time"

// RequestStatus is the cancellation request lifecycle.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pendiente"
	RequestApproved RequestStatus = "aprobada"
	RequestRejected RequestStatus = "rechazada"
)

// TypeCancellation is the document type discriminator for requests.
const TypeCancellation = "anulacion"

// CancellationRequest is the standalone approval document for removing an
// item or annulling a whole order. ItemIndex nil means the request targets
// the whole order. At most one pending request may exist per target; the
// workflow engine enforces that, not the store.
type CancellationRequest struct {
	ID        string `json:"_id"`
	Type      string `json:"type"`
	OrdenID   string `json:"orden_id"`
	ItemIndex *int   `json:"item_index,omitempty"`

	Solicitante string        `json:"solicitante"`
	Motivo      string        `json:"motivo"`
	Estado      RequestStatus `json:"estado"`

	Resolutor            string     `json:"resolutor,omitempty"`
	ComentarioResolucion string     `json:"comentario_resolucion,omitempty"`
	FechaSolicitud       time.Time  `json:"fecha_solicitud"`
	FechaResolucion      *time.Time `json:"fecha_resolucion,omitempty"`
}

// WholeOrder reports whether the request targets the entire order.
func (r *CancellationRequest) WholeOrder() bool {
	return r.ItemIndex == nil
}
