package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gestix-erp/gestix/internal/inventory"
	"github.com/gestix-erp/gestix/internal/orders"
	"github.com/gestix-erp/gestix/internal/production"
	"github.com/gestix-erp/gestix/internal/sales"
	"github.com/gestix-erp/gestix/internal/shared"
)

// Service is the reservation/fulfillment coordinator: every state change that
// touches an inventory instance together with a sale, order or production
// record runs here, inside a single retryable transaction. Stock checks
// happen inside the transaction, never before it; that is what keeps
// concurrent checkouts from overselling.
type Service struct {
	store       Store
	audit       shared.AuditPort
	idempotency IdempotencyPort
	catalog     CatalogPort
	logger      *slog.Logger
}

// NewService builds Service.
func NewService(store Store, audit shared.AuditPort, idem IdempotencyPort, catalog CatalogPort, logger *slog.Logger) *Service {
	return &Service{store: store, audit: audit, idempotency: idem, catalog: catalog, logger: logger}
}

// CreateSale checks available stock, reserves (or consumes) the quantity and
// writes the sale with the next company guide number, atomically.
func (s *Service) CreateSale(ctx context.Context, input CreateSaleInput) (CreateSaleResult, error) {
	if input.ProductName == "" {
		return CreateSaleResult{}, errors.New("fulfillment: product name required")
	}
	if input.Quantity <= 0 {
		return CreateSaleResult{}, errors.New("fulfillment: quantity must be positive")
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	insertedKey, err := s.guardIdempotency(ctx, input.IdempotencyKey)
	if err != nil {
		return CreateSaleResult{}, err
	}

	var result CreateSaleResult
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		result = CreateSaleResult{}

		inst, err := tx.GetInstanceForUpdate(ctx, input.CompanyID, input.ProductName, input.Location)
		if err != nil {
			return fmt.Errorf("fulfillment: stock for %q: %w", input.ProductName, err)
		}
		if input.Quantity > inst.Available() {
			return fmt.Errorf("%w: %q has %.2f available, requested %.2f",
				shared.ErrInsufficientStock, input.ProductName, inst.Available(), input.Quantity)
		}

		seq, err := tx.NextGuideSequence(ctx, input.CompanyID)
		if err != nil {
			return err
		}

		sale := buildSale(input, inst.Price, seq)
		if input.PickupLater {
			if err := tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock, inst.ReservedStock+input.Quantity); err != nil {
				return err
			}
		} else {
			sale.Status = sales.StatusPickedUp
			if err := tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock-input.Quantity, inst.ReservedStock); err != nil {
				return err
			}
		}
		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}
		result.Sale = sale
		return nil
	})
	if err != nil {
		s.releaseIdempotency(ctx, input.IdempotencyKey, insertedKey)
		return CreateSaleResult{}, err
	}

	s.recordAudit(ctx, input.ActorID, "fulfillment:create_sale", "sale", result.Sale.ID.String(), map[string]any{
		"product":  input.ProductName,
		"location": input.Location,
		"quantity": input.Quantity,
		"guide":    result.Sale.GuideNumber,
		"pickup":   input.PickupLater,
	})
	return result, nil
}

// CreateOrder reserves stock when the product is tracked and writes the order
// plus its companion sale under one guide number. Untracked products order on
// faith: the reservation step is skipped and a warning is attached.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (CreateOrderResult, error) {
	if input.ProductName == "" {
		return CreateOrderResult{}, errors.New("fulfillment: product name required")
	}
	if input.Quantity <= 0 {
		return CreateOrderResult{}, errors.New("fulfillment: quantity must be positive")
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	insertedKey, err := s.guardIdempotency(ctx, input.IdempotencyKey)
	if err != nil {
		return CreateOrderResult{}, err
	}

	var result CreateOrderResult
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		result = CreateOrderResult{}

		link, err := lookupStock(ctx, tx, input.CompanyID, input.ProductName, input.Location)
		if err != nil {
			return err
		}

		unitPrice := input.UnitPrice
		if unitPrice == 0 && link.linked {
			unitPrice = link.instance.Price
		}
		if unitPrice == 0 && s.catalog != nil {
			def, err := s.catalog.Defaults(ctx, input.CompanyID, input.ProductName)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if err == nil {
				unitPrice = def.Price
			}
		}

		if link.linked {
			if input.Quantity > link.instance.Available() {
				return fmt.Errorf("%w: %q has %.2f available, requested %.2f",
					shared.ErrInsufficientStock, input.ProductName, link.instance.Available(), input.Quantity)
			}
		}

		seq, err := tx.NextGuideSequence(ctx, input.CompanyID)
		if err != nil {
			return err
		}
		guide := sales.FormatGuideNumber(sales.DocumentTypeOrder, seq)

		if link.linked {
			inst := link.instance
			if err := tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock, inst.ReservedStock+input.Quantity); err != nil {
				return err
			}
		} else {
			result.Warnings = append(result.Warnings, shared.WarnProductNotInStock)
		}

		order := orders.Order{
			ID:           uuid.New(),
			CompanyID:    input.CompanyID,
			ProductName:  input.ProductName,
			Quantity:     input.Quantity,
			UnitPrice:    unitPrice,
			TotalValue:   input.Quantity * unitPrice,
			Status:       orders.StatusPending,
			DeliveryDate: input.DeliveryDate,
			ClientName:   input.ClientName,
			Location:     input.Location,
			GuideNumber:  guide,
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		sale := sales.Sale{
			ID:           uuid.New(),
			CompanyID:    input.CompanyID,
			Date:         input.Date,
			ProductName:  input.ProductName,
			Quantity:     input.Quantity,
			UnitPrice:    unitPrice,
			Subtotal:     input.Quantity * unitPrice,
			TotalValue:   input.Quantity * unitPrice,
			AmountPaid:   input.AmountPaid,
			Status:       sales.StatusPaid,
			DocumentType: sales.DocumentTypeOrder,
			GuideNumber:  guide,
			Location:     input.Location,
			CustomerID:   input.CustomerID,
			ClientName:   input.ClientName,
			OrderID:      &order.ID,
		}
		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}

		result.Order = order
		result.Sale = sale
		return nil
	})
	if err != nil {
		s.releaseIdempotency(ctx, input.IdempotencyKey, insertedKey)
		return CreateOrderResult{}, err
	}

	s.recordAudit(ctx, input.ActorID, "fulfillment:create_order", "order", result.Order.ID.String(), map[string]any{
		"product":  input.ProductName,
		"quantity": input.Quantity,
		"guide":    result.Order.GuideNumber,
		"reserved": len(result.Warnings) == 0,
	})
	return result, nil
}

// ConfirmPickup moves a paid sale to picked-up: the reserved quantity becomes
// consumed stock (stock and reservedStock both drop by the sale quantity).
func (s *Service) ConfirmPickup(ctx context.Context, companyID, saleID uuid.UUID, actorID string) (PickupResult, error) {
	var result PickupResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		result = PickupResult{}

		sale, err := tx.GetSaleForUpdate(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		if sale.Status == sales.StatusPickedUp {
			return fmt.Errorf("%w: sale %s already picked up", shared.ErrInvalidState, sale.GuideNumber)
		}

		link, err := lookupStock(ctx, tx, companyID, sale.ProductName, sale.Location)
		if err != nil {
			return err
		}
		if link.linked {
			inst := link.instance
			newStock := inst.Stock - sale.Quantity
			newReserved := inst.ReservedStock - sale.Quantity
			if newStock < 0 || newReserved < 0 {
				// Physical counts can undercut reservations; clamp and report
				// instead of corrupting the ledger with negatives.
				result.Warnings = append(result.Warnings, shared.WarnStockBelowReservations)
				if newStock < 0 {
					newStock = 0
				}
				if newReserved < 0 {
					newReserved = 0
				}
			}
			if err := tx.UpdateInstanceStock(ctx, inst.ID, newStock, newReserved); err != nil {
				return err
			}
		} else {
			result.Warnings = append(result.Warnings, shared.WarnProductNotInStock)
		}

		if err := tx.UpdateSaleStatus(ctx, sale.ID, sales.StatusPickedUp); err != nil {
			return err
		}
		sale.Status = sales.StatusPickedUp
		result.Sale = sale
		return nil
	})
	if err != nil {
		return PickupResult{}, err
	}

	s.recordAudit(ctx, actorID, "fulfillment:confirm_pickup", "sale", saleID.String(), map[string]any{
		"guide": result.Sale.GuideNumber,
	})
	return result, nil
}

// DeleteSale removes a sale. A paid sale releases its reservation; a
// picked-up sale is archival only and deleting it never restocks. Returns
// are a distinct flow this system does not model.
func (s *Service) DeleteSale(ctx context.Context, companyID, saleID uuid.UUID, actorID string) (DeleteSaleResult, error) {
	var result DeleteSaleResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		result = DeleteSaleResult{}

		sale, err := tx.GetSaleForUpdate(ctx, companyID, saleID)
		if err != nil {
			return err
		}

		if sale.Status == sales.StatusPaid {
			link, err := lookupStock(ctx, tx, companyID, sale.ProductName, sale.Location)
			if err != nil {
				return err
			}
			if link.linked {
				inst := link.instance
				newReserved := inst.ReservedStock - sale.Quantity
				if newReserved < 0 {
					result.Warnings = append(result.Warnings, shared.WarnStockBelowReservations)
					newReserved = 0
				}
				if err := tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock, newReserved); err != nil {
					return err
				}
				result.ReleasedQuantity = sale.Quantity
			}
		}

		return tx.DeleteSale(ctx, sale.ID)
	})
	if err != nil {
		return DeleteSaleResult{}, err
	}

	s.recordAudit(ctx, actorID, "fulfillment:delete_sale", "sale", saleID.String(), map[string]any{
		"released": result.ReleasedQuantity,
	})
	return result, nil
}

// UpdateOrderStatus advances an order. Completion is gated on production:
// callers with a shortfall must go through AutoCompleteProduction.
func (s *Service) UpdateOrderStatus(ctx context.Context, companyID, orderID uuid.UUID, newStatus orders.Status, actorID string) (orders.Order, error) {
	var updated orders.Order
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		order, err := tx.GetOrderForUpdate(ctx, companyID, orderID)
		if err != nil {
			return err
		}

		switch newStatus {
		case orders.StatusInProduction:
			if order.Status != orders.StatusPending {
				return fmt.Errorf("%w: order is %s", shared.ErrInvalidState, order.Status)
			}
			if order.ProductionStartDate == nil {
				now := time.Now().UTC()
				order.ProductionStartDate = &now
			}
		case orders.StatusCompleted:
			if order.QuantityProduced < order.Quantity {
				return fmt.Errorf("%w: produced %.2f of %.2f; complete production first",
					shared.ErrInvalidState, order.QuantityProduced, order.Quantity)
			}
		default:
			return fmt.Errorf("%w: cannot move order to %s", shared.ErrInvalidState, newStatus)
		}

		order.Status = newStatus
		if err := tx.UpdateOrderProgress(ctx, order.ID, order.Status, order.QuantityProduced, order.ProductionStartDate); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	s.recordAudit(ctx, actorID, "fulfillment:update_order_status", "order", orderID.String(), map[string]any{
		"status": string(newStatus),
	})
	return updated, nil
}

// AutoCompleteProduction produces the order's shortfall in one transaction:
// production log + linked production record + order completed, and the
// manufactured quantity added to stock when the product is tracked. Newly
// manufactured quantity is added outright, not reserved-and-released.
func (s *Service) AutoCompleteProduction(ctx context.Context, companyID, orderID uuid.UUID, registeredBy string) (AutoCompleteResult, error) {
	var result AutoCompleteResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		result = AutoCompleteResult{}

		order, err := tx.GetOrderForUpdate(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if order.Status == orders.StatusCompleted {
			return fmt.Errorf("%w: order already completed", shared.ErrInvalidState)
		}

		missing := order.Missing()
		if missing > 0 {
			link, err := lookupStock(ctx, tx, companyID, order.ProductName, order.Location)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if err := tx.AppendProductionLog(ctx, orders.ProductionLog{
				ID:           uuid.New(),
				OrderID:      order.ID,
				Date:         now,
				Quantity:     missing,
				RegisteredBy: registeredBy,
			}); err != nil {
				return err
			}

			prod := production.Production{
				ID:           uuid.New(),
				CompanyID:    companyID,
				Date:         now,
				ProductName:  order.ProductName,
				Quantity:     missing,
				Location:     order.Location,
				RegisteredBy: registeredBy,
				Status:       production.StatusDone,
				OrderID:      &order.ID,
			}
			if link.linked {
				prod.Unit = link.instance.Unit
			}
			if err := tx.InsertProduction(ctx, prod); err != nil {
				return err
			}
			result.Production = &prod

			if link.linked {
				inst := link.instance
				if err := tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock+missing, inst.ReservedStock); err != nil {
					return err
				}
			} else {
				result.Warnings = append(result.Warnings, shared.WarnProductNotInStock)
			}
		}

		order.QuantityProduced = order.Quantity
		order.Status = orders.StatusCompleted
		if order.ProductionStartDate == nil {
			now := time.Now().UTC()
			order.ProductionStartDate = &now
		}
		if err := tx.UpdateOrderProgress(ctx, order.ID, order.Status, order.QuantityProduced, order.ProductionStartDate); err != nil {
			return err
		}
		result.Order = order
		return nil
	})
	if err != nil {
		return AutoCompleteResult{}, err
	}

	meta := map[string]any{"order": orderID.String()}
	if result.Production != nil {
		meta["produced"] = result.Production.Quantity
	}
	s.recordAudit(ctx, registeredBy, "fulfillment:auto_complete_production", "order", orderID.String(), meta)
	return result, nil
}

// RegisterProduction records manufactured quantity outside any order.
// With TransferNow the quantity lands in inventory in the same transaction.
func (s *Service) RegisterProduction(ctx context.Context, input RegisterProductionInput) (RegisterProductionResult, error) {
	if input.ProductName == "" {
		return RegisterProductionResult{}, errors.New("fulfillment: product name required")
	}
	if input.Quantity <= 0 {
		return RegisterProductionResult{}, errors.New("fulfillment: quantity must be positive")
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	var result RegisterProductionResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		result = RegisterProductionResult{}

		prod := production.Production{
			ID:           uuid.New(),
			CompanyID:    input.CompanyID,
			Date:         input.Date,
			ProductName:  input.ProductName,
			Quantity:     input.Quantity,
			Unit:         input.Unit,
			Location:     input.Location,
			RegisteredBy: input.RegisteredBy,
			Status:       production.StatusDone,
		}

		if input.TransferNow {
			link, err := lookupStock(ctx, tx, input.CompanyID, input.ProductName, input.Location)
			if err != nil {
				return err
			}
			prod.Status = production.StatusTransferred
			if link.linked {
				inst := link.instance
				if err := tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock+input.Quantity, inst.ReservedStock); err != nil {
					return err
				}
			} else {
				if err := tx.InsertInstance(ctx, inventory.Instance{
					ID:          uuid.New(),
					CompanyID:   input.CompanyID,
					ProductName: input.ProductName,
					Location:    input.Location,
					Stock:       input.Quantity,
					Unit:        input.Unit,
				}); err != nil {
					return err
				}
			}
		}

		if err := tx.InsertProduction(ctx, prod); err != nil {
			return err
		}
		result.Production = prod
		return nil
	})
	if err != nil {
		return RegisterProductionResult{}, err
	}

	s.recordAudit(ctx, input.ActorID, "fulfillment:register_production", "production", result.Production.ID.String(), map[string]any{
		"product":  input.ProductName,
		"quantity": input.Quantity,
		"transfer": input.TransferNow,
	})
	return result, nil
}

// TransferProduction moves a completed production's quantity into the
// inventory ledger. Terminal: there is no untransfer.
func (s *Service) TransferProduction(ctx context.Context, companyID, productionID uuid.UUID, actorID string) (production.Production, error) {
	var updated production.Production
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		prod, err := tx.GetProductionForUpdate(ctx, companyID, productionID)
		if err != nil {
			return err
		}
		if prod.Status != production.StatusDone {
			return fmt.Errorf("%w: production is %s", shared.ErrInvalidState, prod.Status)
		}

		link, err := lookupStock(ctx, tx, companyID, prod.ProductName, prod.Location)
		if err != nil {
			return err
		}
		if link.linked {
			inst := link.instance
			if err := tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock+prod.Quantity, inst.ReservedStock); err != nil {
				return err
			}
		} else {
			if err := tx.InsertInstance(ctx, inventory.Instance{
				ID:          uuid.New(),
				CompanyID:   companyID,
				ProductName: prod.ProductName,
				Location:    prod.Location,
				Stock:       prod.Quantity,
				Unit:        prod.Unit,
			}); err != nil {
				return err
			}
		}

		if err := tx.UpdateProductionStatus(ctx, prod.ID, production.StatusTransferred); err != nil {
			return err
		}
		prod.Status = production.StatusTransferred
		updated = prod
		return nil
	})
	if err != nil {
		return production.Production{}, err
	}

	s.recordAudit(ctx, actorID, "fulfillment:transfer_production", "production", productionID.String(), map[string]any{
		"quantity": updated.Quantity,
	})
	return updated, nil
}

// AuditStock overwrites an instance's stock with a physical count. Reserved
// stock is untouched; a count below outstanding reservations is permitted but
// reported as an anomaly.
func (s *Service) AuditStock(ctx context.Context, input AuditStockInput) (AuditStockResult, error) {
	if input.PhysicalCount < 0 {
		return AuditStockResult{}, errors.New("fulfillment: physical count must be >= 0")
	}

	var result AuditStockResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		result = AuditStockResult{}

		inst, err := tx.GetInstanceByIDForUpdate(ctx, input.CompanyID, input.InstanceID)
		if err != nil {
			return err
		}

		result.Adjustment = input.PhysicalCount - inst.Stock
		if input.PhysicalCount < inst.ReservedStock {
			result.Warnings = append(result.Warnings, shared.WarnStockBelowReservations)
		}

		if err := tx.UpdateInstanceStock(ctx, inst.ID, input.PhysicalCount, inst.ReservedStock); err != nil {
			return err
		}
		inst.Stock = input.PhysicalCount
		result.Instance = inst
		return nil
	})
	if err != nil {
		return AuditStockResult{}, err
	}

	s.recordAudit(ctx, input.ActorID, "fulfillment:audit_stock", "inventory_instance", input.InstanceID.String(), map[string]any{
		"physical_count": input.PhysicalCount,
		"adjustment":     result.Adjustment,
		"reason":         input.Reason,
		"anomaly":        len(result.Warnings) > 0,
	})
	return result, nil
}

// TransferStock moves on-hand quantity between two locations atomically.
// Transfers may not dip into reserved stock.
func (s *Service) TransferStock(ctx context.Context, input TransferStockInput) error {
	if input.Quantity <= 0 {
		return errors.New("fulfillment: quantity must be positive")
	}
	if input.FromLocation == input.ToLocation {
		return errors.New("fulfillment: source and destination location must differ")
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		src, err := tx.GetInstanceForUpdate(ctx, input.CompanyID, input.ProductName, input.FromLocation)
		if err != nil {
			return fmt.Errorf("fulfillment: stock at source: %w", err)
		}
		if input.Quantity > src.Available() {
			return fmt.Errorf("%w: %q has %.2f available at %q, requested %.2f",
				shared.ErrInsufficientStock, input.ProductName, src.Available(), input.FromLocation, input.Quantity)
		}

		dst, err := lookupStock(ctx, tx, input.CompanyID, input.ProductName, input.ToLocation)
		if err != nil {
			return err
		}

		if err := tx.UpdateInstanceStock(ctx, src.ID, src.Stock-input.Quantity, src.ReservedStock); err != nil {
			return err
		}
		if dst.linked {
			inst := dst.instance
			return tx.UpdateInstanceStock(ctx, inst.ID, inst.Stock+input.Quantity, inst.ReservedStock)
		}
		return tx.InsertInstance(ctx, inventory.Instance{
			ID:                     uuid.New(),
			CompanyID:              input.CompanyID,
			ProductName:            input.ProductName,
			Location:               input.ToLocation,
			Stock:                  input.Quantity,
			Price:                  src.Price,
			Unit:                   src.Unit,
			LowStockThreshold:      src.LowStockThreshold,
			CriticalStockThreshold: src.CriticalStockThreshold,
		})
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, input.ActorID, "fulfillment:transfer_stock", "inventory_instance", input.ProductName, map[string]any{
		"from":     input.FromLocation,
		"to":       input.ToLocation,
		"quantity": input.Quantity,
	})
	return nil
}

func buildSale(input CreateSaleInput, instancePrice float64, seq int64) sales.Sale {
	unitPrice := input.UnitPrice
	if unitPrice == 0 {
		unitPrice = instancePrice
	}
	subtotal := input.Quantity * unitPrice
	vat := (subtotal - input.Discount) * input.VATRate
	return sales.Sale{
		ID:           uuid.New(),
		CompanyID:    input.CompanyID,
		Date:         input.Date,
		ProductName:  input.ProductName,
		Quantity:     input.Quantity,
		UnitPrice:    unitPrice,
		Subtotal:     subtotal,
		Discount:     input.Discount,
		VAT:          vat,
		TotalValue:   subtotal - input.Discount + vat,
		AmountPaid:   input.AmountPaid,
		Status:       sales.StatusPaid,
		DocumentType: sales.DocumentTypeSale,
		GuideNumber:  sales.FormatGuideNumber(sales.DocumentTypeSale, seq),
		Location:     input.Location,
		CustomerID:   input.CustomerID,
		ClientName:   input.ClientName,
	}
}

func (s *Service) guardIdempotency(ctx context.Context, key string) (bool, error) {
	if s.idempotency == nil || key == "" {
		return false, nil
	}
	if err := s.idempotency.CheckAndInsert(ctx, key, "fulfillment"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) releaseIdempotency(ctx context.Context, key string, inserted bool) {
	if inserted {
		_ = s.idempotency.Delete(ctx, key)
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
