package api

import (
	"net/http"
	"strconv"

	"github.com/vietddude/sparki/internal/core/domain"
	"github.com/vietddude/sparki/internal/core/geo"
)

// pathID parses the {id} wildcard. It writes a 400 and returns false when
// the id is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleAddWholesaler(w http.ResponseWriter, r *http.Request) {
	var ws domain.Wholesaler
	if err := decode(r, &ws); err != nil {
		fail(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if ws.StoreName == "" || ws.CurrentStatus == "" || ws.OpenTime == "" || ws.CloseTime == "" ||
		ws.Distance == "" || ws.Duration == "" || ws.Email == "" || ws.Latitude == "" || ws.Longitude == "" {
		fail(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	ctx := r.Context()
	exists, err := s.deps.Wholesalers.Exists(ctx, &ws)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if exists {
		fail(w, http.StatusConflict, "A wholesaler with the same store name, location, latitude, and longitude already exists")
		return
	}

	if _, err := s.deps.Wholesalers.Create(ctx, &ws); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Wholesaler added successfully", nil)
}

func (s *Server) handleGetWholesalers(w http.ResponseWriter, r *http.Request) {
	origin, err := geo.ParsePoint(r.PathValue("latitude"), r.PathValue("longitude"))
	if err != nil {
		fail(w, http.StatusBadRequest, "Missing latitude or longitude")
		return
	}

	all, err := s.deps.Wholesalers.All(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	if len(all) == 0 {
		respondEmpty(w, http.StatusNotFound, "No wholesalers found")
		return
	}

	matches := geo.FilterNearby(origin, all, geo.DefaultRadiusKm)
	if len(matches) == 0 {
		respondEmpty(w, http.StatusNotFound, "No wholesalers found within 50km")
		return
	}

	nearby := make([]domain.NearbyWholesaler, len(matches))
	for i, m := range matches {
		nearby[i] = domain.NearbyWholesaler{Wholesaler: m.Item, DistanceInKm: m.DistanceKm}
	}
	respond(w, http.StatusOK, "Nearby wholesalers retrieved successfully", nearby)
}

func (s *Server) handleUpdateWholesaler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var update domain.WholesalerUpdate
	if err := decode(r, &update); err != nil || update.Empty() {
		fail(w, http.StatusBadRequest, "At least one field must be provided to update")
		return
	}

	updated, err := s.deps.Wholesalers.Update(r.Context(), id, update)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !updated {
		fail(w, http.StatusNotFound, "Wholesaler not found")
		return
	}
	respond(w, http.StatusOK, "Wholesaler updated successfully", nil)
}

func (s *Server) handleDeleteWholesaler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.deps.Wholesalers.Delete(r.Context(), id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !deleted {
		fail(w, http.StatusNotFound, "Wholesaler not found")
		return
	}
	respond(w, http.StatusOK, "Wholesaler deleted successfully", nil)
}
