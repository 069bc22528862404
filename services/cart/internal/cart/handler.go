package cart

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

	"github.com/stuywashndry/washnd/pkg/event"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger    aqm.Logger
	config    *aqm.Config
	tlm       *telemetry.HTTP
	registry  *Registry
	repo      CartRepo
	discounts *DiscountCache
	publisher events.Publisher
}

type HandlerDeps struct {
	Registry  *Registry
	Repo      CartRepo
	Discounts *DiscountCache
	Publisher events.Publisher
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		registry:  hd.Registry,
		repo:      hd.Repo,
		discounts: hd.Discounts,
		publisher: hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.CreateCart)
		r.Get("/", h.ListCarts)
		r.Get("/{id}", h.GetCart)
		r.Delete("/{id}", h.DeleteCart)

		r.Route("/{id}/items", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Put("/", h.UpdateItem)
			r.Delete("/", h.RemoveItem)
		})

		r.Get("/{id}/quantity", h.GetQuantity)
		r.Post("/{id}/discount", h.ApplyDiscount)
	})
}

type CartCreateRequest struct {
	UserID    string `json:"user_id"`
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
}

type DiscountRequest struct {
	Code string `json:"code"`
}

func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateCart")
	defer finish()

	log := h.log(r)

	var req CartCreateRequest
	if !h.decode(w, r, &req, log) {
		return
	}
	if req.UserID == "" || req.StoreID == "" {
		log.Debug("missing user or store id in create cart request")
		aqm.RespondError(w, http.StatusBadRequest, "user_id and store_id are required")
		return
	}

	created, err := h.registry.CreateCartForLaundromat(r.Context(), req.UserID, req.StoreID, req.StoreName)
	if err != nil {
		log.Error("cannot create cart", "user_id", req.UserID, "store_id", req.StoreID, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create cart")
		return
	}

	snap := created.Snapshot()
	h.publish(r, event.EventCartReplaced, snap, nil)

	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, snap)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCart")
	defer finish()

	log := h.log(r)
	cartID := chi.URLParam(r, "id")

	current, err := h.hydrate(r, cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		log.Error("cannot fetch cart", "cart_id", cartID, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}

	aqm.RespondSuccess(w, current.Snapshot())
}

func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListCarts")
	defer finish()

	log := h.log(r)
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		aqm.RespondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	carts, err := h.repo.FetchAllForUser(r.Context(), userID)
	if err != nil {
		log.Error("cannot list carts", "user_id", userID, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve carts")
		return
	}
	snaps := make([]*Cart, len(carts))
	for i, c := range carts {
		h.registry.Track(c)
		snaps[i] = c.Snapshot()
	}

	aqm.RespondCollection(w, snaps, "carts")
}

func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteCart")
	defer finish()

	log := h.log(r)
	cartID := chi.URLParam(r, "id")

	if err := h.registry.Remove(r.Context(), cartID); err != nil {
		if errors.Is(err, ErrCartNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		log.Error("cannot delete cart", "cart_id", cartID, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()

	h.mutateItems(w, r, "add")
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItem")
	defer finish()

	h.mutateItems(w, r, "update")
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveItem")
	defer finish()

	h.mutateItems(w, r, "remove")
}

func (h *Handler) mutateItems(w http.ResponseWriter, r *http.Request, op string) {
	log := h.log(r)
	cartID := chi.URLParam(r, "id")

	current, err := h.hydrate(r, cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		log.Error("cannot fetch cart", "cart_id", cartID, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}

	var item OrderItem
	if !h.decode(w, r, &item, log) {
		return
	}
	if op != "remove" && item.Count < 0 {
		aqm.RespondError(w, http.StatusBadRequest, "count cannot be negative")
		return
	}

	// AddItem may merge into an existing line, so the change kind decides
	// between added and updated events.
	var changed *OrderItem
	var kind ChangeKind
	switch op {
	case "add":
		kind, changed = current.AddItem(&item)
	case "update":
		kind, changed = current.UpdateItem(&item)
	case "remove":
		kind, changed = current.RemoveItem(&item)
	}

	snap := current.Snapshot()
	if kind != ChangeNone {
		if err := h.repo.Update(r.Context(), snap); err != nil {
			log.Error("cannot persist cart", "cart_id", cartID, "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not update cart")
			return
		}
		h.publish(r, eventTypeFor(kind), snap, changed)
	}

	aqm.RespondSuccess(w, snap)
}

func (h *Handler) GetQuantity(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetQuantity")
	defer finish()

	log := h.log(r)
	cartID := chi.URLParam(r, "id")

	current, err := h.hydrate(r, cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		log.Error("cannot fetch cart", "cart_id", cartID, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}

	// With item_id the count narrows to that item's family: every
	// configuration of the catalog item, not just one variant.
	if itemIDStr := r.URL.Query().Get("item_id"); itemIDStr != "" {
		itemID, err := uuid.Parse(itemIDStr)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid item_id parameter")
			return
		}
		payload := map[string]int{"family_count": current.TotalCountFor(&OrderItem{ID: itemID})}
		aqm.RespondSuccess(w, payload)
		return
	}

	payload := map[string]int{"total_quantity": current.TotalQuantity()}
	aqm.RespondSuccess(w, payload)
}

func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ApplyDiscount")
	defer finish()

	log := h.log(r)
	cartID := chi.URLParam(r, "id")

	current, err := h.hydrate(r, cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		log.Error("cannot fetch cart", "cart_id", cartID, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}

	var req DiscountRequest
	if !h.decode(w, r, &req, log) {
		return
	}
	if req.Code == "" {
		aqm.RespondError(w, http.StatusBadRequest, "code is required")
		return
	}

	code, err := h.discounts.Lookup(r.Context(), req.Code)
	if err != nil {
		log.Info("discount code lookup failed", "code", req.Code, "error", err)
		aqm.RespondError(w, http.StatusNotFound, "Discount code not found")
		return
	}

	snap := current.Snapshot()
	if err := code.Validate(snap.Subtotal, time.Now()); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload := map[string]float64{
		"discount": snap.ComputeDiscount(*code),
		"subtotal": snap.Subtotal,
	}
	aqm.RespondSuccess(w, payload)
}

// hydrate resolves a cart from the registry, falling back to the repo and
// tracking the reconstructed cart for subsequent requests.
func (h *Handler) hydrate(r *http.Request, cartID string) (*Cart, error) {
	if current, ok := h.registry.ByID(cartID); ok {
		return current, nil
	}
	current, err := h.repo.Fetch(r.Context(), cartID)
	if err != nil {
		return nil, err
	}
	h.registry.Track(current)
	return current, nil
}

func (h *Handler) publish(r *http.Request, eventType string, c *Cart, item *OrderItem) {
	if h.publisher == nil {
		return
	}

	evt := event.CartChangeEvent{
		EventType:  eventType,
		OccurredAt: time.Now(),
		CartID:     c.ID,
		UserID:     c.UserID,
		StoreID:    c.StoreID,
		Subtotal:   c.Subtotal,
	}
	if item != nil {
		evt.ItemID = item.ID.String()
		evt.ItemName = item.Name
		evt.VariantKey = item.VariantKey()
		evt.Count = item.Count
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log(r).Error("cannot marshal cart event", "error", err)
		return
	}
	if err := h.publisher.Publish(r.Context(), event.CartChangesTopic, msg); err != nil {
		h.log(r).Error("cannot publish cart event", "topic", event.CartChangesTopic, "error", err)
	}
}

func eventTypeFor(kind ChangeKind) string {
	switch kind {
	case ChangeAdded:
		return event.EventCartItemAdded
	case ChangeRemoved:
		return event.EventCartItemRemoved
	default:
		return event.EventCartItemUpdated
	}
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
