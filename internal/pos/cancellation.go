package pos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wzamorag/tjAdmin-sub001/internal/auth"
	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// The two cancellation flows (item-level and whole-order) are
// structurally identical: a gated request document plus a pending marker
// on the target, resolved by an approver whose role the external
// authorizer vouches for. The order document is always the first write:
// its revision check is what decides races between an approver and a
// terminal editing the same order. The request update and any ledger
// reversal trail it (see the package note on the multi-document gap).

// RequestItemCancellation opens an approval request for one item. The
// item keeps counting toward the total until the request is resolved.
// Items already picked up by their station cannot be recalled.
func (e *Engine) RequestItemCancellation(ctx context.Context, orderID string, index int, motivo string) (*doc.CancellationRequest, error) {
	user, err := e.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.Role.CanRequestCancellations() {
		return nil, newNotAuthorizedError(
			fmt.Sprintf("role %s may not request cancellations", user.Role))
	}
	if motivo == "" {
		return nil, newValidationError("cancellation motivo is required")
	}

	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Estado != doc.OrderPending {
		return nil, newInvalidStateError(orderID, index,
			fmt.Sprintf("items can only be cancelled while pendiente, estado is %s", order.Estado))
	}
	item := order.Item(index)
	if item == nil {
		return nil, newNotFoundError(fmt.Sprintf("order %s has no item %d", orderID, index), nil)
	}
	switch item.Estado {
	case doc.ItemCancelled:
		return nil, newInvalidStateError(orderID, index, "item is already anulado")
	case doc.ItemPendingCancellation:
		return nil, newInvalidStateError(orderID, index, "item already has a pending cancellation request")
	case doc.ItemCancellationRejected:
		return nil, newInvalidStateError(orderID, index,
			"a rejected cancellation is awaiting acknowledgement; dismiss it first")
	}
	if item.Dispatched() {
		return nil, newInvalidStateError(orderID, index, "item was already dispatched and cannot be recalled")
	}

	item.Estado = doc.ItemPendingCancellation
	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}

	idx := index
	req := &doc.CancellationRequest{
		ID:             "anulacion:" + e.ids.NewID(),
		Type:           doc.TypeCancellation,
		OrdenID:        orderID,
		ItemIndex:      &idx,
		Solicitante:    user.ID,
		Motivo:         motivo,
		Estado:         doc.RequestPending,
		FechaSolicitud: e.now().UTC(),
	}
	if _, err := e.store.Save(ctx, req.ID, doc.PartitionCancels, req, docstore.NoRevision); err != nil {
		return nil, fmt.Errorf("write cancellation request: %w", err)
	}
	return req, nil
}

// ApproveItemCancellation annuls the target item, excludes it from the
// total and reverses its ingredient consumption when it had been sent to
// a station. Requires an approver role.
func (e *Engine) ApproveItemCancellation(ctx context.Context, requestID, comentario string) (*doc.Order, *doc.CancellationRequest, error) {
	user, err := e.requireApprover(ctx)
	if err != nil {
		return nil, nil, err
	}

	req, reqRev, err := e.loadRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.WholeOrder() {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: "request targets the whole order; use ApproveOrderCancellation"}
	}
	if req.Estado != doc.RequestPending {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: fmt.Sprintf("request is already %s", req.Estado)}
	}

	order, rev, err := e.loadOrder(ctx, req.OrdenID)
	if err != nil {
		return nil, nil, err
	}
	item := order.Item(*req.ItemIndex)
	if item == nil {
		return nil, nil, newNotFoundError(
			fmt.Sprintf("order %s has no item %d", req.OrdenID, *req.ItemIndex), nil)
	}
	if item.Estado != doc.ItemPendingCancellation {
		return nil, nil, newInvalidStateError(req.OrdenID, *req.ItemIndex,
			fmt.Sprintf("item is %s, not awaiting approval", item.Estado))
	}

	item.Estado = doc.ItemCancelled
	item.RechazoMotivo = ""
	item.RechazoActor = ""
	order.RecomputeTotal()
	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, nil, err
	}

	if err := e.resolveRequest(ctx, req, reqRev, doc.RequestApproved, user.ID, comentario); err != nil {
		return nil, nil, err
	}

	// Restock only what was deducted: items never sent consumed nothing.
	if item.Enviado {
		if err := e.restockItem(ctx, order, item); err != nil {
			return nil, nil, err
		}
	}
	return order, req, nil
}

// RejectItemCancellation denies the request. The item returns to the
// total path it never left, and carries the rejection (reason and actor)
// until the requester acknowledges it with DismissRejection.
func (e *Engine) RejectItemCancellation(ctx context.Context, requestID, motivo string) (*doc.Order, *doc.CancellationRequest, error) {
	user, err := e.requireApprover(ctx)
	if err != nil {
		return nil, nil, err
	}
	if motivo == "" {
		return nil, nil, newValidationError("rejection motivo is required")
	}

	req, reqRev, err := e.loadRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.WholeOrder() {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: "request targets the whole order; use RejectOrderCancellation"}
	}
	if req.Estado != doc.RequestPending {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: fmt.Sprintf("request is already %s", req.Estado)}
	}

	order, rev, err := e.loadOrder(ctx, req.OrdenID)
	if err != nil {
		return nil, nil, err
	}
	item := order.Item(*req.ItemIndex)
	if item == nil {
		return nil, nil, newNotFoundError(
			fmt.Sprintf("order %s has no item %d", req.OrdenID, *req.ItemIndex), nil)
	}
	if item.Estado != doc.ItemPendingCancellation {
		return nil, nil, newInvalidStateError(req.OrdenID, *req.ItemIndex,
			fmt.Sprintf("item is %s, not awaiting approval", item.Estado))
	}

	item.Estado = doc.ItemCancellationRejected
	item.RechazoMotivo = motivo
	item.RechazoActor = user.ID
	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, nil, err
	}

	if err := e.resolveRequest(ctx, req, reqRev, doc.RequestRejected, user.ID, motivo); err != nil {
		return nil, nil, err
	}
	return order, req, nil
}

// DismissRejection acknowledges a rejected item cancellation, returning
// the item to activo and clearing the rejection banner.
func (e *Engine) DismissRejection(ctx context.Context, orderID string, index int) (*doc.Order, error) {
	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := order.Item(index)
	if item == nil {
		return nil, newNotFoundError(fmt.Sprintf("order %s has no item %d", orderID, index), nil)
	}
	if item.Estado != doc.ItemCancellationRejected {
		return nil, newInvalidStateError(orderID, index,
			fmt.Sprintf("item is %s, there is no rejection to dismiss", item.Estado))
	}

	item.Estado = doc.ItemActive
	item.RechazoMotivo = ""
	item.RechazoActor = ""
	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}
	return order, nil
}

// RequestOrderCancellation opens an approval request for the whole order.
// The order's estado is untouched until approval: only a pending flag is
// set, which blocks further edits but keeps the order visible.
func (e *Engine) RequestOrderCancellation(ctx context.Context, orderID, motivo string) (*doc.CancellationRequest, error) {
	user, err := e.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.Role.CanRequestCancellations() {
		return nil, newNotAuthorizedError(
			fmt.Sprintf("role %s may not request cancellations", user.Role))
	}
	if motivo == "" {
		return nil, newValidationError("cancellation motivo is required")
	}

	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Estado != doc.OrderPending && order.Estado != doc.OrderBilling {
		return nil, newInvalidStateError(orderID, -1,
			fmt.Sprintf("orders in estado %s cannot be cancelled", order.Estado))
	}
	if order.AnulacionPendiente {
		return nil, newInvalidStateError(orderID, -1, "order already has a pending full cancellation request")
	}

	order.AnulacionPendiente = true
	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}

	req := &doc.CancellationRequest{
		ID:             "anulacion:" + e.ids.NewID(),
		Type:           doc.TypeCancellation,
		OrdenID:        orderID,
		Solicitante:    user.ID,
		Motivo:         motivo,
		Estado:         doc.RequestPending,
		FechaSolicitud: e.now().UTC(),
	}
	if _, err := e.store.Save(ctx, req.ID, doc.PartitionCancels, req, docstore.NoRevision); err != nil {
		return nil, fmt.Errorf("write cancellation request: %w", err)
	}
	return req, nil
}

// ApproveOrderCancellation annuls the whole order: estado becomes
// anulada (terminal), every still-counted item is marked anulado, and the
// consumption of every item that had been sent to a station is reversed
// in one pass.
func (e *Engine) ApproveOrderCancellation(ctx context.Context, requestID, comentario string) (*doc.Order, *doc.CancellationRequest, error) {
	user, err := e.requireApprover(ctx)
	if err != nil {
		return nil, nil, err
	}

	req, reqRev, err := e.loadRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if !req.WholeOrder() {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: "request targets a single item; use ApproveItemCancellation"}
	}
	if req.Estado != doc.RequestPending {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: fmt.Sprintf("request is already %s", req.Estado)}
	}

	order, rev, err := e.loadOrder(ctx, req.OrdenID)
	if err != nil {
		return nil, nil, err
	}
	if order.Estado != doc.OrderPending && order.Estado != doc.OrderBilling {
		return nil, nil, newInvalidStateError(order.ID, -1,
			fmt.Sprintf("orders in estado %s cannot be cancelled", order.Estado))
	}
	if !order.AnulacionPendiente {
		return nil, nil, newInvalidStateError(order.ID, -1, "order has no pending full cancellation")
	}

	var revert []int
	for i := range order.Items {
		it := &order.Items[i]
		if !it.Counted() {
			continue
		}
		if it.Enviado {
			revert = append(revert, i)
		}
		it.Estado = doc.ItemCancelled
	}

	when := e.now().UTC()
	order.Estado = doc.OrderCancelled
	order.AnulacionPendiente = false
	order.AnuladaPor = user.ID
	order.FechaAnulacion = &when
	order.RecomputeTotal()

	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, nil, err
	}
	if err := e.resolveRequest(ctx, req, reqRev, doc.RequestApproved, user.ID, comentario); err != nil {
		return nil, nil, err
	}
	for _, i := range revert {
		if err := e.restockItem(ctx, order, &order.Items[i]); err != nil {
			return nil, nil, err
		}
	}
	return order, req, nil
}

// RejectOrderCancellation denies a full-order request and clears the
// pending flag; the order resumes its normal lifecycle. The rejection
// reason stays on the resolved request document, where the requester
// reads it.
func (e *Engine) RejectOrderCancellation(ctx context.Context, requestID, motivo string) (*doc.Order, *doc.CancellationRequest, error) {
	user, err := e.requireApprover(ctx)
	if err != nil {
		return nil, nil, err
	}
	if motivo == "" {
		return nil, nil, newValidationError("rejection motivo is required")
	}

	req, reqRev, err := e.loadRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if !req.WholeOrder() {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: "request targets a single item; use RejectItemCancellation"}
	}
	if req.Estado != doc.RequestPending {
		return nil, nil, &OpError{Code: ErrCodeInvalidState, RequestID: requestID, ItemIndex: -1,
			Message: fmt.Sprintf("request is already %s", req.Estado)}
	}

	order, rev, err := e.loadOrder(ctx, req.OrdenID)
	if err != nil {
		return nil, nil, err
	}
	if !order.AnulacionPendiente {
		return nil, nil, newInvalidStateError(order.ID, -1, "order has no pending full cancellation")
	}

	order.AnulacionPendiente = false
	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, nil, err
	}
	if err := e.resolveRequest(ctx, req, reqRev, doc.RequestRejected, user.ID, motivo); err != nil {
		return nil, nil, err
	}
	return order, req, nil
}

// GetCancellation loads one cancellation request.
func (e *Engine) GetCancellation(ctx context.Context, requestID string) (*doc.CancellationRequest, error) {
	req, _, err := e.loadRequest(ctx, requestID)
	return req, err
}

// PendingCancellations lists unresolved requests, optionally filtered to
// one order (empty orderID means all).
func (e *Engine) PendingCancellations(ctx context.Context, orderID string) ([]doc.CancellationRequest, error) {
	rows, err := e.store.QueryByPartition(ctx, doc.PartitionCancels)
	if err != nil {
		return nil, fmt.Errorf("query cancellations: %w", err)
	}
	var out []doc.CancellationRequest
	for _, row := range rows {
		var req doc.CancellationRequest
		if err := json.Unmarshal(row.Doc, &req); err != nil {
			return nil, fmt.Errorf("decode cancellation %q: %w", row.ID, err)
		}
		if req.Estado != doc.RequestPending {
			continue
		}
		if orderID != "" && req.OrdenID != orderID {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// requireApprover resolves the current user and enforces the approval
// role gate. The engine is otherwise role-agnostic: it only insists that
// the external authorizer vouched for the actor before a resolution.
func (e *Engine) requireApprover(ctx context.Context) (auth.User, error) {
	user, err := e.currentUser(ctx)
	if err != nil {
		return auth.User{}, err
	}
	if !user.Role.CanApproveCancellations() {
		return auth.User{}, newNotAuthorizedError(
			fmt.Sprintf("role %s may not resolve cancellations", user.Role))
	}
	return user, nil
}

func (e *Engine) loadRequest(ctx context.Context, requestID string) (*doc.CancellationRequest, docstore.Revision, error) {
	var req doc.CancellationRequest
	rev, err := docstore.GetAs(ctx, e.store, requestID, &req)
	if err != nil {
		if docstore.IsNotFound(err) {
			return nil, docstore.NoRevision, newNotFoundError(
				fmt.Sprintf("cancellation request %q not found", requestID), err)
		}
		return nil, docstore.NoRevision, fmt.Errorf("load cancellation %q: %w", requestID, err)
	}
	return &req, rev, nil
}

func (e *Engine) resolveRequest(ctx context.Context, req *doc.CancellationRequest, rev docstore.Revision, estado doc.RequestStatus, resolutor, comentario string) error {
	when := e.now().UTC()
	req.Estado = estado
	req.Resolutor = resolutor
	req.ComentarioResolucion = comentario
	req.FechaResolucion = &when
	if _, err := e.store.Save(ctx, req.ID, doc.PartitionCancels, req, rev); err != nil {
		if docstore.IsConflict(err) {
			return newConflictError(req.ID, err)
		}
		return fmt.Errorf("resolve cancellation %q: %w", req.ID, err)
	}
	return nil
}
