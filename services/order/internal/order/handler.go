package order

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stuywashndry/washnd/pkg/enums/orderstatus"
	"github.com/stuywashndry/washnd/pkg/event"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger       aqm.Logger
	config       *aqm.Config
	tlm          *telemetry.HTTP
	orderRepo    OrderRepo
	deliveryRepo DeliveryRepo
	carts        CartFetcher
	payments     PaymentProcessor
	publisher    events.Publisher
}

type HandlerDeps struct {
	OrderRepo    OrderRepo
	DeliveryRepo DeliveryRepo
	Carts        CartFetcher
	Payments     PaymentProcessor
	Publisher    events.Publisher
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	payments := hd.Payments
	if payments == nil {
		payments = NoopPaymentProcessor{}
	}
	return &Handler{
		logger:       logger,
		config:       config,
		tlm:          telemetry.NewHTTP(),
		orderRepo:    hd.OrderRepo,
		deliveryRepo: hd.DeliveryRepo,
		carts:        hd.Carts,
		payments:     payments,
		publisher:    hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Checkout)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}/status", h.UpdateOrderStatus)
		r.Delete("/{id}", h.DeleteOrder)
	})

	r.Route("/deliveries", func(r chi.Router) {
		r.Post("/", h.CreateDelivery)
		r.Get("/", h.ListDeliveries)
		r.Get("/{id}", h.GetDelivery)
		r.Put("/{id}/status", h.UpdateDeliveryStatus)
		r.Delete("/{id}", h.DeleteDelivery)
	})
}

type CheckoutRequest struct {
	CartID string `json:"cart_id"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// Checkout handles POST /orders. The cart is fetched from the cart service,
// frozen into an order and priced. Payment failures void the order before it
// ever reaches the repository.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Checkout")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req CheckoutRequest
	if !h.decode(w, r, &req, log) {
		return
	}
	if req.CartID == "" {
		aqm.RespondError(w, http.StatusBadRequest, "cart_id is required")
		return
	}

	snapshot, err := h.carts.FetchCart(ctx, req.CartID)
	if err != nil {
		log.Error("cannot fetch cart for checkout", "cart_id", req.CartID, "error", err)
		aqm.RespondError(w, http.StatusBadGateway, "Could not retrieve cart")
		return
	}
	if len(snapshot.Items) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	o := NewOrderFromCart(snapshot)

	if err := h.payments.Authorize(ctx, o.CustomerID, o.TotalPrice); err != nil {
		// The void is terminal and the order is dropped here, unpersisted.
		_ = o.VoidPaymentFailure()
		log.Info("payment authorization failed", "order_id", o.ID.String(), "customer_id", o.CustomerID, "error", err)
		h.publishOrderEvent(r, event.EventOrderVoided, o)
		aqm.RespondError(w, http.StatusPaymentRequired, "Payment authorization failed")
		return
	}

	if err := o.Advance(orderstatus.Statuses.Placed.Name); err != nil {
		log.Error("cannot place order", "order_id", o.ID.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not place order")
		return
	}

	if err := h.orderRepo.Create(ctx, o); err != nil {
		log.Error("cannot persist order", "order_id", o.ID.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create order")
		return
	}

	h.publishOrderEvent(r, event.EventOrderPlaced, o)

	links := aqm.RESTfulLinksFor(o)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, o, links...)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	o, err := h.orderRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error("error loading order", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve order")
		return
	}

	links := aqm.RESTfulLinksFor(o)
	aqm.RespondSuccess(w, o, links...)
}

// ListOrders handles GET /orders with optional customer_id and status filters
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	customerID := r.URL.Query().Get("customer_id")
	status := r.URL.Query().Get("status")

	var orders []*Order
	var err error

	switch {
	case customerID != "":
		orders, err = h.orderRepo.ListByCustomer(ctx, customerID)
	case status != "":
		orders, err = h.orderRepo.ListByStatus(ctx, status)
	default:
		orders, err = h.orderRepo.List(ctx)
	}

	if err != nil {
		log.Error("cannot list orders", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list orders")
		return
	}

	aqm.RespondCollection(w, orders, "orders")
}

// UpdateOrderStatus handles PUT /orders/{id}/status. Transitions outside the
// table are rejected, which keeps the voided states unreachable once an
// order has been placed.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	o, err := h.orderRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error("error loading order", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve order")
		return
	}

	var req StatusUpdateRequest
	if !h.decode(w, r, &req, log) {
		return
	}

	if err := o.Advance(req.Status); err != nil {
		log.Debug("rejected status transition", "order_id", id.String(), "from", o.Status, "to", req.Status)
		aqm.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	if err := h.orderRepo.Save(ctx, o); err != nil {
		log.Error("cannot update order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	links := aqm.RESTfulLinksFor(o)
	aqm.RespondSuccess(w, o, links...)
}

// DeleteOrder handles DELETE /orders/{id}
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error("cannot delete order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delivery handlers

// CreateDelivery handles POST /deliveries
func (h *Handler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateDelivery")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var d Delivery
	if !h.decode(w, r, &d, log) {
		return
	}
	if d.OrderID == uuid.Nil {
		aqm.RespondError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	// The order must exist and be durable
	if _, err := h.orderRepo.Get(ctx, d.OrderID); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error("error loading order for delivery", "error", err, "order_id", d.OrderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve order")
		return
	}

	d.BeforeCreate()

	if err := h.deliveryRepo.Create(ctx, &d); err != nil {
		log.Error("cannot create delivery", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create delivery")
		return
	}

	links := aqm.RESTfulLinksFor(&d)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, &d, links...)
}

// GetDelivery handles GET /deliveries/{id}
func (h *Handler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDelivery")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	d, err := h.deliveryRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDeliveryNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Delivery not found")
			return
		}
		log.Error("error loading delivery", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve delivery")
		return
	}

	links := aqm.RESTfulLinksFor(d)
	aqm.RespondSuccess(w, d, links...)
}

// ListDeliveries handles GET /deliveries with an optional order_id filter
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListDeliveries")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	if orderIDStr := r.URL.Query().Get("order_id"); orderIDStr != "" {
		orderID, err := uuid.Parse(orderIDStr)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid order_id parameter")
			return
		}
		d, err := h.deliveryRepo.GetByOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, ErrDeliveryNotFound) {
				aqm.RespondError(w, http.StatusNotFound, "Delivery not found")
				return
			}
			log.Error("error loading delivery by order", "error", err, "order_id", orderID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve delivery")
			return
		}
		aqm.RespondSuccess(w, d)
		return
	}

	deliveries, err := h.deliveryRepo.List(ctx)
	if err != nil {
		log.Error("cannot list deliveries", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list deliveries")
		return
	}

	aqm.RespondCollection(w, deliveries, "deliveries")
}

// UpdateDeliveryStatus handles PUT /deliveries/{id}/status
func (h *Handler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateDeliveryStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	d, err := h.deliveryRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDeliveryNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Delivery not found")
			return
		}
		log.Error("error loading delivery", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve delivery")
		return
	}

	var req StatusUpdateRequest
	if !h.decode(w, r, &req, log) {
		return
	}

	if err := d.Advance(req.Status); err != nil {
		log.Debug("rejected delivery transition", "delivery_id", id.String(), "from", d.Status, "to", req.Status)
		aqm.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	d.BeforeUpdate()

	if err := h.deliveryRepo.Save(ctx, d); err != nil {
		log.Error("cannot update delivery", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update delivery")
		return
	}

	links := aqm.RESTfulLinksFor(d)
	aqm.RespondSuccess(w, d, links...)
}

// DeleteDelivery handles DELETE /deliveries/{id}
func (h *Handler) DeleteDelivery(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteDelivery")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.deliveryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrDeliveryNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Delivery not found")
			return
		}
		log.Error("cannot delete delivery", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete delivery")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helpers

func (h *Handler) publishOrderEvent(r *http.Request, eventType string, o *Order) {
	if h.publisher == nil {
		return
	}

	evt := event.OrderPlacedEvent{
		EventType:  eventType,
		OccurredAt: time.Now(),
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID,
		StoreID:    o.StoreID,
		CartID:     o.CartID,
		Subtotal:   o.Subtotal,
		SalesTax:   o.SalesTax,
		TotalPrice: o.TotalPrice,
		ItemCount:  o.ItemCount(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log(r).Error("cannot marshal order event", "error", err)
		return
	}
	if err := h.publisher.Publish(r.Context(), event.OrdersTopic, msg); err != nil {
		h.log(r).Error("cannot publish order event", "topic", event.OrdersTopic, "error", err)
	}
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out interface{}, log aqm.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Debug("failed to decode request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
