package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"printexpress/internal/service/catalog/domain"
)

// CatalogHandler exposes catalog CRUD over HTTP. Listing is public, the
// mutations are admin-side.
type CatalogHandler struct {
	repo domain.ItemRepository
}

// NewCatalogHandler creates the handler.
func NewCatalogHandler(repo domain.ItemRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// RegisterRoutes registers catalog routes on the mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog/items", h.handleList)
	mux.HandleFunc("POST /catalog/items", h.handleCreate)
	mux.HandleFunc("PUT /catalog/items/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /catalog/items/{id}", h.handleDelete)
}

type itemPayload struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Active      bool    `json:"active"`
}

func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrItemNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	activeOnly := r.URL.Query().Get("all") != "true"
	items, err := h.repo.List(ctx, activeOnly)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *CatalogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Name == "" || p.Price < 0 {
		http.Error(w, "name is required and price must be non-negative", http.StatusBadRequest)
		return
	}
	item := &domain.Item{Name: p.Name, Description: p.Description, Category: p.Category, Price: p.Price, Active: p.Active}
	if err := h.repo.Create(ctx, item); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *CatalogHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Price < 0 {
		http.Error(w, "price must be non-negative", http.StatusBadRequest)
		return
	}
	item := &domain.Item{ID: id, Name: p.Name, Description: p.Description, Category: p.Category, Price: p.Price, Active: p.Active}
	if err := h.repo.Update(ctx, item); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *CatalogHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	if err := h.repo.Delete(ctx, id); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
