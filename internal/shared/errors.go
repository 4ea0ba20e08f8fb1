package shared

import "errors"

var (
	// ErrNotFound indicates a referenced company, instance, sale, order or
	// production record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates the requested quantity exceeds available
	// stock (stock - reservedStock) at transaction execution time.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidState indicates the operation is not permitted from the
	// entity's current status.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrTransactionFailed surfaces when optimistic-concurrency retries are
	// exhausted.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrForbidden indicates the caller lacks the module permission.
	ErrForbidden = errors.New("forbidden")
)

// WarnProductNotInStock is the soft warning attached to results when a flow
// proceeds without an inventory instance for the product. It is not an error:
// orders and productions complete in degraded mode.
const WarnProductNotInStock = "produto sem registo de stock; operação concluída sem garantia de stock"

// WarnStockBelowReservations flags the audit anomaly where a physical count
// drives stock below outstanding reservations.
const WarnStockBelowReservations = "contagem física abaixo do stock reservado; disponibilidade negativa"
