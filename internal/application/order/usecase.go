// Package order implementa la creación transaccional de pedidos con descuento de stock,
// sus cambios de estado y su eliminación con restitución de inventario.
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// Motivos de rechazo reportados al Observer.
const (
	RejectInsufficientStock = "insufficient_stock"
	RejectProductNotFound   = "product_not_found"
)

// OrderUseCase gestor de pedidos.
type OrderUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.OrderRepository
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	receipts    ReceiptGenerator
	observer    Observer
	log         *logger.Logger
}

// NewOrderUseCase construye el caso de uso. receipts puede ser nil (sin PDF).
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	receipts ReceiptGenerator,
	log *logger.Logger,
) *OrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		receipts:    receipts,
		observer:    nopObserver{},
		log:         log.Component("orders"),
	}
}

// WithObserver registra el observador de eventos de pedidos.
func (uc *OrderUseCase) WithObserver(o Observer) *OrderUseCase {
	if o != nil {
		uc.observer = o
	}
	return uc
}

// Create valida el pedido y, en una sola transacción, bloquea los productos,
// verifica stock línea por línea, persiste cabecera y líneas y descuenta el stock.
// Cualquier línea fallida deja la base sin cambios.
// sellerID es el usuario autenticado; se usa si la petición no indica vendedor.
func (uc *OrderUseCase) Create(ctx context.Context, sellerID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if in.SellerID != "" {
		sellerID = in.SellerID
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.Active {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.ClientID)
	}
	seller, err := uc.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, fmt.Errorf("%w: vendedor %s", domain.ErrNotFound, sellerID)
	}

	now := time.Now()
	orderDate := now
	if in.OrderDate != nil && !in.OrderDate.IsZero() {
		orderDate = *in.OrderDate
	}

	// Cantidad total por producto y orden de bloqueo estable (evita deadlocks entre pedidos).
	totals := make(map[string]int, len(in.Lines))
	for _, l := range in.Lines {
		totals[l.ProductID] += l.Quantity
	}
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var order *entity.Order
	err = uc.txRunner.RunOrder(ctx, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository) error {
		locked := make(map[string]*entity.Product, len(ids))
		for _, id := range ids {
			p, err := productRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p != nil && p.Active {
				locked[id] = p
			}
		}

		remaining := make(map[string]int, len(locked))
		for id, p := range locked {
			remaining[id] = p.Stock
		}
		order = &entity.Order{
			ID:        uuid.New().String(),
			ClientID:  client.ID,
			SellerID:  seller.ID,
			OrderDate: orderDate,
			Total:     decimal.Zero,
			Status:    entity.OrderPendingDelivery,
			CreatedAt: now,
			UpdatedAt: now,
		}
		for _, l := range in.Lines {
			if _, ok := locked[l.ProductID]; !ok {
				return domain.NewProductNotFound(l.ProductID)
			}
			if l.Quantity > remaining[l.ProductID] {
				return domain.NewInsufficientStock(l.ProductID, l.Quantity, remaining[l.ProductID]).
					WithName(locked[l.ProductID].Name)
			}
			remaining[l.ProductID] -= l.Quantity
			subtotal := entity.LineSubtotal(l.UnitPrice, l.Quantity)
			order.Total = order.Total.Add(subtotal)
			order.Lines = append(order.Lines, entity.OrderLine{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Subtotal:  subtotal,
			})
		}

		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for i := range order.Lines {
			if err := orderRepo.CreateLine(ctx, &order.Lines[i]); err != nil {
				return err
			}
		}
		for _, id := range ids {
			if err := productRepo.DecrementStock(ctx, id, totals[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var stockErr *domain.StockError
		if errors.As(err, &stockErr) {
			reason := RejectInsufficientStock
			if errors.Is(err, domain.ErrProductNotFound) {
				reason = RejectProductNotFound
			}
			uc.observer.OrderRejected(reason)
			uc.log.Warn().Str("product_id", stockErr.ProductID).Str("reason", reason).
				Str("client_id", client.ID).Msg("pedido rechazado")
		}
		return nil, err
	}

	uc.observer.OrderCreated()
	uc.log.Info().
		Str("order_id", order.ID).
		Str("client_id", order.ClientID).
		Str("seller_id", order.SellerID).
		Str("total", order.Total.StringFixed(2)).
		Int("lines", len(order.Lines)).
		Msg("pedido creado")
	return toOrderResponse(order), nil
}

// UpdateStatus cambia el estado del pedido. No toca inventario.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, id, status string) (*dto.OrderResponse, error) {
	if !entity.ValidOrderStatus(status) {
		return nil, domain.Invalid("status", "estado de pedido desconocido")
	}
	var order *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(_ repository.ProductRepository, orderRepo repository.OrderRepository) error {
		var err error
		order, err = orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		if err := orderRepo.UpdateStatus(ctx, id, status, now); err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// Delete elimina el pedido. Si estaba pendiente de entrega devuelve al stock
// exactamente lo que consumió; en cualquier otro estado el stock no cambia.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	var restored bool
	err := uc.txRunner.RunOrder(ctx, func(productRepo repository.ProductRepository, orderRepo repository.OrderRepository) error {
		order, err := orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.IsPending() {
			back := make(map[string]int, len(order.Lines))
			for _, l := range order.Lines {
				back[l.ProductID] += l.Quantity
			}
			ids := make([]string, 0, len(back))
			for pid := range back {
				ids = append(ids, pid)
			}
			sort.Strings(ids)
			for _, pid := range ids {
				if err := productRepo.IncrementStock(ctx, pid, back[pid]); err != nil {
					return err
				}
			}
			restored = true
		}
		return orderRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("order_id", id).Bool("stock_restored", restored).Msg("pedido eliminado")
	return nil
}

// Get obtiene un pedido con sus líneas.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(order), nil
}

// List lista pedidos con filtros opcionales (cliente, vendedor, estado).
func (uc *OrderUseCase) List(ctx context.Context, f repository.OrderFilter) (*dto.OrderListResponse, error) {
	if f.Status != "" && !entity.ValidOrderStatus(f.Status) {
		return nil, domain.Invalid("status", "estado de pedido desconocido")
	}
	list, err := uc.orderRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

// ListByClient pedidos de un cliente.
func (uc *OrderUseCase) ListByClient(ctx context.Context, clientID string, limit, offset int) (*dto.OrderListResponse, error) {
	client, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return uc.List(ctx, repository.OrderFilter{ClientID: clientID, Limit: limit, Offset: offset})
}

// ListBySeller pedidos tomados por un vendedor.
func (uc *OrderUseCase) ListBySeller(ctx context.Context, sellerID string, limit, offset int) (*dto.OrderListResponse, error) {
	return uc.List(ctx, repository.OrderFilter{SellerID: sellerID, Limit: limit, Offset: offset})
}

// Receipt genera el comprobante PDF del pedido.
func (uc *OrderUseCase) Receipt(ctx context.Context, id string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, fmt.Errorf("order: generador de comprobantes no configurado")
	}
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(ctx, order.ClientID)
	if err != nil {
		return nil, err
	}
	seller, err := uc.userRepo.GetByID(ctx, order.SellerID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(order.Lines))
	for _, l := range order.Lines {
		if _, ok := names[l.ProductID]; ok {
			continue
		}
		p, err := uc.productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			names[l.ProductID] = p.Name
		}
	}
	return uc.receipts.OrderReceipt(ctx, ReceiptData{Order: order, Client: client, Seller: seller, ProductNames: names})
}

func validateLines(lines []dto.OrderLineRequest) error {
	if len(lines) == 0 {
		return domain.Invalid("lines", "el pedido debe tener al menos una línea")
	}
	for i, l := range lines {
		if l.ProductID == "" {
			return domain.Invalid(fmt.Sprintf("lines[%d].product_id", i), "es requerido")
		}
		if l.Quantity <= 0 {
			return domain.Invalid(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if l.UnitPrice.IsNegative() {
			return domain.Invalid(fmt.Sprintf("lines[%d].unit_price", i), "no puede ser negativo")
		}
	}
	return nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return &dto.OrderResponse{
		ID:        o.ID,
		ClientID:  o.ClientID,
		SellerID:  o.SellerID,
		OrderDate: o.OrderDate,
		Total:     o.Total,
		Status:    o.Status,
		Lines:     lines,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
