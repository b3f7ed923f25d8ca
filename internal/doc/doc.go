// Package doc defines the document model persisted through the docstore.
//
// Every record (order, ticket, cancellation request, inventory movement,
// dish/ingredient relation, daily closure, sequence counter) is a single
// JSON document. Field names keep the Spanish vocabulary of the stored
// schema (numero_orden, mesa, mesero, anulacion, cierre_z) so documents
// written by earlier versions of the back office remain readable.
//
// Documents carry no revision field: revisions are owned by the docstore
// and travel out of band, next to the document bytes.
package doc
