package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func newTestHandler() (*Handler, *MockMenuRepo, *MockDiscountRepo) {
	menuRepo := NewMockMenuRepo()
	discountRepo := NewMockDiscountRepo()
	deps := HandlerDeps{
		MenuRepo:     menuRepo,
		DiscountRepo: discountRepo,
	}
	return NewHandler(deps, aqm.NewConfig(), nil), menuRepo, discountRepo
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlerCreateMenu(t *testing.T) {
	tests := []struct {
		name           string
		payload        func() []byte
		expectedStatus int
	}{
		{
			name: "validMenu",
			payload: func() []byte {
				b, _ := json.Marshal(sampleMenu())
				return b
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalidCategory",
			payload: func() []byte {
				m := sampleMenu()
				m.Category = "ironing"
				b, _ := json.Marshal(m)
				return b
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalidJSON",
			payload: func() []byte {
				return []byte(`{not json`)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, menuRepo, _ := newTestHandler()

			req := httptest.NewRequest(http.MethodPost, "/menus", bytes.NewReader(tt.payload()))
			w := httptest.NewRecorder()
			h.CreateMenu(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("CreateMenu() status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			menus, _ := menuRepo.List(context.Background())
			if len(menus) != 1 {
				t.Fatalf("stored menus = %d, want 1", len(menus))
			}
			if menus[0].Items[0].Count != 0 || menus[0].Items[0].Choices[0].Selected {
				t.Error("stored menu should have session overlays cleared")
			}
		})
	}
}

func TestHandlerGetStoreMenu(t *testing.T) {
	h, menuRepo, _ := newTestHandler()

	m := sampleMenu()
	m.EnsureID()
	if err := menuRepo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed menu error = %v", err)
	}

	t.Run("returnsClearedMenu", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/menus/store/store-1/washing", nil)
		req = withURLParams(req, map[string]string{"storeID": "store-1", "category": MenuCategoryWashing})

		w := httptest.NewRecorder()
		h.GetStoreMenu(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("GetStoreMenu() status = %d, want %d", w.Code, http.StatusOK)
		}

		var resp struct {
			Data LaundromatMenu `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("cannot decode response: %v", err)
		}
		for i, item := range resp.Data.Items {
			if item.Count != 0 || item.SpecialInstructions != "" {
				t.Errorf("items[%d] overlays not cleared", i)
			}
			for j, choice := range item.Choices {
				if choice.Selected {
					t.Errorf("items[%d].choices[%d] selection not cleared", i, j)
				}
			}
		}
	})

	t.Run("unknownStore", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/menus/store/nowhere/washing", nil)
		req = withURLParams(req, map[string]string{"storeID": "nowhere", "category": MenuCategoryWashing})

		w := httptest.NewRecorder()
		h.GetStoreMenu(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("GetStoreMenu() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestHandlerGetMenu(t *testing.T) {
	h, menuRepo, _ := newTestHandler()

	m := sampleMenu()
	m.EnsureID()
	if err := menuRepo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed menu error = %v", err)
	}

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{
			name:           "found",
			id:             m.ID.String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "notFound",
			id:             "550e8400-e29b-41d4-a716-446655440099",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalidID",
			id:             "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/menus/"+tt.id, nil)
			req = withURLParams(req, map[string]string{"id": tt.id})

			w := httptest.NewRecorder()
			h.GetMenu(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("GetMenu() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerDiscountCodeCRUD(t *testing.T) {
	h, _, discountRepo := newTestHandler()
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		body := []byte(`{"code":"WELCOME10","percentage":10}`)
		req := httptest.NewRequest(http.MethodPost, "/discount-codes", bytes.NewReader(body))
		w := httptest.NewRecorder()
		h.CreateDiscountCode(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("CreateDiscountCode() status = %d, want %d", w.Code, http.StatusCreated)
		}
		stored, err := discountRepo.GetByCode(ctx, "WELCOME10")
		if err != nil {
			t.Fatalf("stored code lookup error = %v", err)
		}
		if !stored.Active {
			t.Error("new codes should be active")
		}
	})

	t.Run("createRejectsAmbiguousCode", func(t *testing.T) {
		body := []byte(`{"code":"BOTH","percentage":10,"value":5}`)
		req := httptest.NewRequest(http.MethodPost, "/discount-codes", bytes.NewReader(body))
		w := httptest.NewRecorder()
		h.CreateDiscountCode(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("CreateDiscountCode() status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/discount-codes/WELCOME10", nil)
		req = withURLParams(req, map[string]string{"code": "WELCOME10"})
		w := httptest.NewRecorder()
		h.GetDiscountCode(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("GetDiscountCode() status = %d, want %d", w.Code, http.StatusOK)
		}

		var resp struct {
			Data DiscountCode `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("cannot decode response: %v", err)
		}
		if resp.Data.Code != "WELCOME10" || resp.Data.Percentage != 10 {
			t.Errorf("unexpected payload: %+v", resp.Data)
		}
	})

	t.Run("getMissing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/discount-codes/NOPE", nil)
		req = withURLParams(req, map[string]string{"code": "NOPE"})
		w := httptest.NewRecorder()
		h.GetDiscountCode(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("GetDiscountCode() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("update", func(t *testing.T) {
		body := []byte(`{"percentage":15}`)
		req := httptest.NewRequest(http.MethodPut, "/discount-codes/WELCOME10", bytes.NewReader(body))
		req = withURLParams(req, map[string]string{"code": "WELCOME10"})
		w := httptest.NewRecorder()
		h.UpdateDiscountCode(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("UpdateDiscountCode() status = %d, want %d", w.Code, http.StatusOK)
		}
		stored, _ := discountRepo.GetByCode(ctx, "WELCOME10")
		if stored.Percentage != 15 {
			t.Errorf("stored percentage = %v, want 15", stored.Percentage)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/discount-codes/WELCOME10", nil)
		req = withURLParams(req, map[string]string{"code": "WELCOME10"})
		w := httptest.NewRecorder()
		h.DeleteDiscountCode(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("DeleteDiscountCode() status = %d, want %d", w.Code, http.StatusNoContent)
		}
		if _, err := discountRepo.GetByCode(ctx, "WELCOME10"); err == nil {
			t.Error("deleted code should not resolve")
		}
	})
}

func TestHandlerMenuItemCRUD(t *testing.T) {
	ctx := context.Background()

	seedMenu := func(t *testing.T, menuRepo *MockMenuRepo) *LaundromatMenu {
		t.Helper()
		m := sampleMenu()
		m.EnsureID()
		if err := menuRepo.Create(ctx, m); err != nil {
			t.Fatalf("seed menu error = %v", err)
		}
		return m
	}

	t.Run("addItem", func(t *testing.T) {
		h, menuRepo, _ := newTestHandler()
		m := seedMenu(t, menuRepo)

		body := []byte(`{"name":"Delicates","category":"washing","price":12.5}`)
		req := httptest.NewRequest(http.MethodPost, "/menus/"+m.ID.String()+"/items", bytes.NewReader(body))
		req = withURLParams(req, map[string]string{"id": m.ID.String()})
		w := httptest.NewRecorder()
		h.AddMenuItem(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("AddMenuItem() status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
		}

		stored, _ := menuRepo.Get(ctx, m.ID)
		if len(stored.Items) != 3 {
			t.Fatalf("stored items = %d, want 3", len(stored.Items))
		}
		added := stored.Items[2]
		if added.Name != "Delicates" {
			t.Errorf("added item name = %q, want Delicates", added.Name)
		}
		if added.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Error("added item was not assigned an ID")
		}
	})

	t.Run("addInvalidItemRejected", func(t *testing.T) {
		h, menuRepo, _ := newTestHandler()
		m := seedMenu(t, menuRepo)

		body := []byte(`{"name":"","price":-1}`)
		req := httptest.NewRequest(http.MethodPost, "/menus/"+m.ID.String()+"/items", bytes.NewReader(body))
		req = withURLParams(req, map[string]string{"id": m.ID.String()})
		w := httptest.NewRecorder()
		h.AddMenuItem(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("AddMenuItem() status = %d, want %d", w.Code, http.StatusBadRequest)
		}

		stored, _ := menuRepo.Get(ctx, m.ID)
		if len(stored.Items) != 2 {
			t.Errorf("rejected item was stored: items = %d", len(stored.Items))
		}
	})

	t.Run("updateItem", func(t *testing.T) {
		h, menuRepo, _ := newTestHandler()
		m := seedMenu(t, menuRepo)
		itemID := m.Items[0].ID

		body := []byte(`{"name":"Wash & Fold XL","category":"washing","price":13}`)
		req := httptest.NewRequest(http.MethodPut, "/menus/"+m.ID.String()+"/items/"+itemID.String(), bytes.NewReader(body))
		req = withURLParams(req, map[string]string{"id": m.ID.String(), "itemID": itemID.String()})
		w := httptest.NewRecorder()
		h.UpdateMenuItem(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("UpdateMenuItem() status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		stored, _ := menuRepo.Get(ctx, m.ID)
		if stored.Items[0].Name != "Wash & Fold XL" {
			t.Errorf("stored item name = %q, want Wash & Fold XL", stored.Items[0].Name)
		}
		if stored.Items[0].ID != itemID {
			t.Errorf("item ID changed on update: %s", stored.Items[0].ID)
		}
	})

	t.Run("updateMissingItem", func(t *testing.T) {
		h, menuRepo, _ := newTestHandler()
		m := seedMenu(t, menuRepo)
		missing := uuid.New()

		body := []byte(`{"name":"Ghost","price":1}`)
		req := httptest.NewRequest(http.MethodPut, "/menus/"+m.ID.String()+"/items/"+missing.String(), bytes.NewReader(body))
		req = withURLParams(req, map[string]string{"id": m.ID.String(), "itemID": missing.String()})
		w := httptest.NewRecorder()
		h.UpdateMenuItem(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("UpdateMenuItem() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("removeItem", func(t *testing.T) {
		h, menuRepo, _ := newTestHandler()
		m := seedMenu(t, menuRepo)
		itemID := m.Items[1].ID

		req := httptest.NewRequest(http.MethodDelete, "/menus/"+m.ID.String()+"/items/"+itemID.String(), nil)
		req = withURLParams(req, map[string]string{"id": m.ID.String(), "itemID": itemID.String()})
		w := httptest.NewRecorder()
		h.RemoveMenuItem(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("RemoveMenuItem() status = %d, want %d", w.Code, http.StatusNoContent)
		}

		stored, _ := menuRepo.Get(ctx, m.ID)
		if len(stored.Items) != 1 {
			t.Errorf("stored items = %d, want 1", len(stored.Items))
		}
	})

	t.Run("removeMissingItem", func(t *testing.T) {
		h, menuRepo, _ := newTestHandler()
		m := seedMenu(t, menuRepo)
		missing := uuid.New()

		req := httptest.NewRequest(http.MethodDelete, "/menus/"+m.ID.String()+"/items/"+missing.String(), nil)
		req = withURLParams(req, map[string]string{"id": m.ID.String(), "itemID": missing.String()})
		w := httptest.NewRecorder()
		h.RemoveMenuItem(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("RemoveMenuItem() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}
