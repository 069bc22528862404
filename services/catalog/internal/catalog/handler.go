package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

// Handler handles HTTP requests for the catalog service
type Handler struct {
	menuRepo     MenuRepo
	discountRepo DiscountRepo
	logger       aqm.Logger
	config       *aqm.Config
	tlm          *telemetry.HTTP
}

type HandlerDeps struct {
	MenuRepo     MenuRepo
	DiscountRepo DiscountRepo
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		menuRepo:     hd.MenuRepo,
		discountRepo: hd.DiscountRepo,
		logger:       logger,
		config:       config,
		tlm:          telemetry.NewHTTP(),
	}
}

// RegisterRoutes registers all routes for the catalog service. Menus and
// discount codes are top level so sibling services can resolve them with
// the shared service client.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menus", func(r chi.Router) {
		r.Post("/", h.CreateMenu)
		r.Get("/", h.ListMenus)
		r.Get("/{id}", h.GetMenu)
		r.Put("/{id}", h.UpdateMenu)
		r.Delete("/{id}", h.DeleteMenu)
		r.Get("/store/{storeID}/{category}", h.GetStoreMenu)

		r.Route("/{id}/items", func(r chi.Router) {
			r.Post("/", h.AddMenuItem)
			r.Put("/{itemID}", h.UpdateMenuItem)
			r.Delete("/{itemID}", h.RemoveMenuItem)
		})
	})

	r.Route("/discount-codes", func(r chi.Router) {
		r.Post("/", h.CreateDiscountCode)
		r.Get("/", h.ListDiscountCodes)
		r.Get("/{code}", h.GetDiscountCode)
		r.Put("/{code}", h.UpdateDiscountCode)
		r.Delete("/{code}", h.DeleteDiscountCode)
	})
}

// Menu handlers

// CreateMenu handles POST /menus
func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateMenu")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	m, ok := h.decodeMenuPayload(w, r, log)
	if !ok {
		return
	}

	m.BeforeCreate()

	if validationErrors := ValidateMenu(m); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.menuRepo.Create(ctx, m); err != nil {
		log.Error("cannot create menu", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create menu")
		return
	}

	links := aqm.RESTfulLinksFor(m)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, m, links...)
}

// GetMenu handles GET /menus/{id}
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenu")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	m, err := h.menuRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Menu not found")
			return
		}
		log.Error("error loading menu", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu")
		return
	}

	links := aqm.RESTfulLinksFor(m)
	aqm.RespondSuccess(w, m, links...)
}

// GetStoreMenu handles GET /menus/store/{storeID}/{category}. The menu is
// returned with session overlays cleared so a client can seed a fresh cart
// session from it directly.
func (h *Handler) GetStoreMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetStoreMenu")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	storeID := chi.URLParam(r, "storeID")
	category := chi.URLParam(r, "category")
	if storeID == "" || category == "" {
		aqm.RespondError(w, http.StatusBadRequest, "storeID and category are required")
		return
	}

	m, err := h.menuRepo.GetByStoreCategory(ctx, storeID, category)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Menu not found")
			return
		}
		log.Error("error loading store menu", "error", err, "store_id", storeID, "category", category)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu")
		return
	}

	m.Clear()

	links := aqm.RESTfulLinksFor(m)
	aqm.RespondSuccess(w, m, links...)
}

// ListMenus handles GET /menus
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenus")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	storeID := r.URL.Query().Get("store_id")

	var menus []*LaundromatMenu
	var err error

	if storeID != "" {
		menus, err = h.menuRepo.ListByStore(ctx, storeID)
	} else {
		menus, err = h.menuRepo.List(ctx)
	}

	if err != nil {
		log.Error("cannot list menus", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list menus")
		return
	}

	aqm.RespondCollection(w, menus, "menus")
}

// UpdateMenu handles PUT /menus/{id}
func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateMenu")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	m, ok := h.decodeMenuPayload(w, r, log)
	if !ok {
		return
	}

	m.ID = id
	m.BeforeUpdate()

	if validationErrors := ValidateMenu(m); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.menuRepo.Save(ctx, m); err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Menu not found")
			return
		}
		log.Error("cannot update menu", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update menu")
		return
	}

	links := aqm.RESTfulLinksFor(m)
	aqm.RespondSuccess(w, m, links...)
}

// DeleteMenu handles DELETE /menus/{id}
func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteMenu")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.menuRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Menu not found")
			return
		}
		log.Error("cannot delete menu", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete menu")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Menu item handlers. Items are embedded in their menu document, so each
// operation loads the menu, mutates the item slice and saves the whole menu.

// AddMenuItem handles POST /menus/{id}/items
func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddMenuItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	m, ok := h.loadMenu(w, r, log)
	if !ok {
		return
	}

	item, ok := h.decodeItemPayload(w, r, log)
	if !ok {
		return
	}
	if item.ID == uuid.Nil {
		item.ID = aqm.GenerateNewID()
	}

	m.Items = append(m.Items, *item)
	m.BeforeUpdate()

	if validationErrors := ValidateMenu(m); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.menuRepo.Save(ctx, m); err != nil {
		log.Error("cannot add menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not add menu item")
		return
	}

	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, m)
}

// UpdateMenuItem handles PUT /menus/{id}/items/{itemID}
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateMenuItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	m, ok := h.loadMenu(w, r, log)
	if !ok {
		return
	}

	itemID, ok := h.parseItemIDParam(w, r, log)
	if !ok {
		return
	}

	item, ok := h.decodeItemPayload(w, r, log)
	if !ok {
		return
	}
	item.ID = itemID

	replaced := false
	for i := range m.Items {
		if m.Items[i].ID == itemID {
			m.Items[i] = *item
			replaced = true
			break
		}
	}
	if !replaced {
		aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	m.BeforeUpdate()

	if validationErrors := ValidateMenu(m); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.menuRepo.Save(ctx, m); err != nil {
		log.Error("cannot update menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update menu item")
		return
	}

	aqm.RespondSuccess(w, m)
}

// RemoveMenuItem handles DELETE /menus/{id}/items/{itemID}
func (h *Handler) RemoveMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveMenuItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	m, ok := h.loadMenu(w, r, log)
	if !ok {
		return
	}

	itemID, ok := h.parseItemIDParam(w, r, log)
	if !ok {
		return
	}

	removed := false
	for i := range m.Items {
		if m.Items[i].ID == itemID {
			m.Items = append(m.Items[:i], m.Items[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	m.BeforeUpdate()

	if err := h.menuRepo.Save(ctx, m); err != nil {
		log.Error("cannot remove menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not remove menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Discount code handlers

// CreateDiscountCode handles POST /discount-codes
func (h *Handler) CreateDiscountCode(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateDiscountCode")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	d, ok := h.decodeDiscountPayload(w, r, log)
	if !ok {
		return
	}

	d.BeforeCreate()

	if validationErrors := ValidateDiscountCode(d); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.discountRepo.Create(ctx, d); err != nil {
		log.Error("cannot create discount code", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create discount code")
		return
	}

	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, d)
}

// GetDiscountCode handles GET /discount-codes/{code}
func (h *Handler) GetDiscountCode(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDiscountCode")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	code := chi.URLParam(r, "code")
	if code == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Missing code parameter")
		return
	}

	d, err := h.discountRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrDiscountCodeNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Discount code not found")
			return
		}
		log.Error("error loading discount code", "error", err, "code", code)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve discount code")
		return
	}

	aqm.RespondSuccess(w, d)
}

// ListDiscountCodes handles GET /discount-codes
func (h *Handler) ListDiscountCodes(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListDiscountCodes")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	activeOnly := r.URL.Query().Get("active") == "true"

	var codes []*DiscountCode
	var err error

	if activeOnly {
		codes, err = h.discountRepo.ListActive(ctx)
	} else {
		codes, err = h.discountRepo.List(ctx)
	}

	if err != nil {
		log.Error("cannot list discount codes", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list discount codes")
		return
	}

	aqm.RespondCollection(w, codes, "discount-codes")
}

// UpdateDiscountCode handles PUT /discount-codes/{code}
func (h *Handler) UpdateDiscountCode(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateDiscountCode")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	code := chi.URLParam(r, "code")
	if code == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Missing code parameter")
		return
	}

	d, ok := h.decodeDiscountPayload(w, r, log)
	if !ok {
		return
	}

	d.Code = code
	d.BeforeUpdate()

	if validationErrors := ValidateDiscountCode(d); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.discountRepo.Save(ctx, d); err != nil {
		if errors.Is(err, ErrDiscountCodeNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Discount code not found")
			return
		}
		log.Error("cannot update discount code", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update discount code")
		return
	}

	aqm.RespondSuccess(w, d)
}

// DeleteDiscountCode handles DELETE /discount-codes/{code}
func (h *Handler) DeleteDiscountCode(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteDiscountCode")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	code := chi.URLParam(r, "code")
	if code == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Missing code parameter")
		return
	}

	if err := h.discountRepo.Delete(ctx, code); err != nil {
		if errors.Is(err, ErrDiscountCodeNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Discount code not found")
			return
		}
		log.Error("cannot delete discount code", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete discount code")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
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

func (h *Handler) loadMenu(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*LaundromatMenu, bool) {
	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return nil, false
	}

	m, err := h.menuRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Menu not found")
			return nil, false
		}
		log.Error("error loading menu", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu")
		return nil, false
	}
	return m, true
}

func (h *Handler) parseItemIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	itemIDStr := chi.URLParam(r, "itemID")
	if itemIDStr == "" {
		log.Debug("missing itemID parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing itemID parameter")
		return uuid.Nil, false
	}

	itemID, err := uuid.Parse(itemIDStr)
	if err != nil {
		log.Debug("invalid itemID parameter", "item_id", itemIDStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid itemID parameter")
		return uuid.Nil, false
	}

	return itemID, true
}

func (h *Handler) decodeItemPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*ItemTemplate, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var item ItemTemplate
	if err := json.Unmarshal(body, &item); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	return &item, true
}

func (h *Handler) decodeMenuPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*LaundromatMenu, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var m LaundromatMenu
	if err := json.Unmarshal(body, &m); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	return &m, true
}

func (h *Handler) decodeDiscountPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*DiscountCode, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var d DiscountCode
	if err := json.Unmarshal(body, &d); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	return &d, true
}

func (h *Handler) respondValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Validation failed",
		"errors": errors,
	})
}
