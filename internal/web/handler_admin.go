package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hsaban/saband/internal/domain"
	"github.com/hsaban/saband/internal/store"
)

// storeError maps datastore failures to a response: 404 for missing rows,
// 500 with a generic body otherwise.
func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.logger.Error("datastore operation failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// --- products ---

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		products, err := s.deps.Products.Search(r.Context(), q)
		if err != nil {
			s.storeError(w, "search products", err)
			return
		}
		writeJSON(w, http.StatusOK, products)
		return
	}
	products, err := s.deps.Products.List(r.Context())
	if err != nil {
		s.storeError(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := readJSON(w, r, &product); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if product.SKU == "" || product.ProductName == "" {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	created, err := s.deps.Products.Create(r.Context(), &product)
	if err != nil {
		s.storeError(w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.deps.Products.GetBySKU(r.Context(), r.PathValue("sku"))
	if err != nil {
		s.storeError(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := readJSON(w, r, &product); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	product.SKU = r.PathValue("sku")
	if err := s.deps.Products.Update(r.Context(), &product); err != nil {
		s.storeError(w, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, &product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Products.Delete(r.Context(), r.PathValue("sku")); err != nil {
		s.storeError(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- inventory ---

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Inventory.List(r.Context())
	if err != nil {
		s.storeError(w, "list inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Inventory.GetBySKU(r.Context(), r.PathValue("sku"))
	if err != nil {
		s.storeError(w, "get inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleUpsertInventory serves both POST (sku in the body) and PUT (sku in
// the path). Inventory rows are replaced wholesale on conflict.
func (s *Server) handleUpsertInventory(w http.ResponseWriter, r *http.Request) {
	var item domain.InventoryItem
	if err := readJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if sku := r.PathValue("sku"); sku != "" {
		item.SKU = sku
	}
	if item.SKU == "" || item.ProductName == "" {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if err := s.deps.Inventory.Upsert(r.Context(), &item); err != nil {
		s.storeError(w, "upsert inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, &item)
}

func (s *Server) handleDeleteInventory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Inventory.Delete(r.Context(), r.PathValue("sku")); err != nil {
		s.storeError(w, "delete inventory item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- drivers ---

func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := s.deps.Drivers.List(r.Context())
	if err != nil {
		s.storeError(w, "list drivers", err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (s *Server) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var req domain.Driver
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = domain.DriverActive
	}
	driver, err := s.deps.Drivers.Create(r.Context(), req.FullName, req.Phone, req.Status, req.VehicleType, req.Location)
	if err != nil {
		s.storeError(w, "create driver", err)
		return
	}
	writeJSON(w, http.StatusCreated, driver)
}

type driverStatusRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
}

func (s *Server) handleUpdateDriver(w http.ResponseWriter, r *http.Request) {
	var req driverStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	id := r.PathValue("id")
	if err := s.deps.Drivers.UpdateStatus(r.Context(), id, req.Status, req.Location); err != nil {
		s.storeError(w, "update driver", err)
		return
	}
	driver, err := s.deps.Drivers.GetByID(r.Context(), id)
	if err != nil {
		s.storeError(w, "get driver", err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

// --- business info ---

func (s *Server) handleListBusiness(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Business.List(r.Context())
	if err != nil {
		s.storeError(w, "list business info", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	var entry domain.BusinessInfo
	if err := readJSON(w, r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if entry.Question == "" || entry.Answer == "" {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	created, err := s.deps.Business.Create(r.Context(), &entry)
	if err != nil {
		s.storeError(w, "create business info", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBusiness(w http.ResponseWriter, r *http.Request) {
	var entry domain.BusinessInfo
	if err := readJSON(w, r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	entry.ID = r.PathValue("id")
	if err := s.deps.Business.Update(r.Context(), &entry); err != nil {
		s.storeError(w, "update business info", err)
		return
	}
	writeJSON(w, http.StatusOK, &entry)
}

func (s *Server) handleDeleteBusiness(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Business.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.storeError(w, "delete business info", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- answers cache ---

func (s *Server) handleListCache(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Cache.List(r.Context(), limitParam(r, 100))
	if err != nil {
		s.storeError(w, "list cache", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDeleteCache(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Cache.Delete(r.Context(), r.PathValue("key")); err != nil {
		s.storeError(w, "delete cache entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- chat history ---

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.History.ListRecent(r.Context(), limitParam(r, 50))
	if err != nil {
		s.storeError(w, "list history", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
