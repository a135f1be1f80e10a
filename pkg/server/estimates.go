package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"costline-hq/costline/pkg/estimate"
	"costline-hq/costline/pkg/reconcile"
)

// lineDTO is the wire form of one cost line. Money fields render with
// two decimal places.
type lineDTO struct {
	ItemID        uuid.UUID `json:"itemId"`
	ItemName      string    `json:"itemName,omitempty"`
	ConditionID   uuid.UUID `json:"conditionId"`
	ConditionName string    `json:"conditionName"`
	ZoneID        uuid.UUID `json:"zoneId"`
	QuantityName  string    `json:"quantityName"`
	Unit          string    `json:"unit"`
	Quantity      float64   `json:"quantity"`
	Rate          string    `json:"rate"`
	Cost          string    `json:"cost"`
}

type conditionTotalDTO struct {
	ConditionID   uuid.UUID `json:"conditionId"`
	ConditionName string    `json:"conditionName"`
	ZoneID        uuid.UUID `json:"zoneId"`
	Items         int       `json:"items"`
	Subtotal      string    `json:"subtotal"`
}

type zoneTotalDTO struct {
	ZoneID   uuid.UUID `json:"zoneId"`
	ZoneName string    `json:"zoneName,omitempty"`
	Subtotal string    `json:"subtotal"`
}

// estimateResponse is the wire form of a published estimate.
type estimateResponse struct {
	DocumentID      uuid.UUID           `json:"documentId"`
	PageNumber      int                 `json:"pageNumber"`
	Stale           bool                `json:"stale"`
	Runs            int                 `json:"runs"`
	PublishedAt     time.Time           `json:"publishedAt"`
	Currency        string              `json:"currency"`
	Total           string              `json:"total"`
	Lines           []lineDTO           `json:"lines"`
	ConditionTotals []conditionTotalDTO `json:"conditionTotals"`
	ZoneTotals      []zoneTotalDTO      `json:"zoneTotals"`
	Warnings        []estimate.Warning  `json:"warnings,omitempty"`
}

func toEstimateResponse(entry reconcile.PublishedEstimate) estimateResponse {
	est := entry.Estimate
	resp := estimateResponse{
		DocumentID:      entry.Key.DocumentID,
		PageNumber:      entry.Key.PageNumber,
		Stale:           entry.Stale,
		Runs:            entry.Runs,
		PublishedAt:     entry.PublishedAt,
		Currency:        est.Currency,
		Total:           est.Total.StringFixed(2),
		Lines:           make([]lineDTO, 0, len(est.Lines)),
		ConditionTotals: make([]conditionTotalDTO, 0, len(est.ConditionTotals)),
		ZoneTotals:      make([]zoneTotalDTO, 0, len(est.ZoneTotals)),
		Warnings:        est.Warnings,
	}
	for _, l := range est.Lines {
		resp.Lines = append(resp.Lines, lineDTO{
			ItemID:        l.ItemID,
			ItemName:      l.ItemName,
			ConditionID:   l.ConditionID,
			ConditionName: l.ConditionName,
			ZoneID:        l.ZoneID,
			QuantityName:  l.QuantityName,
			Unit:          l.Unit,
			Quantity:      l.Quantity,
			Rate:          l.Rate.StringFixed(2),
			Cost:          l.Cost.StringFixed(2),
		})
	}
	for _, ct := range est.ConditionTotals {
		resp.ConditionTotals = append(resp.ConditionTotals, conditionTotalDTO{
			ConditionID:   ct.ConditionID,
			ConditionName: ct.ConditionName,
			ZoneID:        ct.ZoneID,
			Items:         ct.Items,
			Subtotal:      ct.Subtotal.StringFixed(2),
		})
	}
	for _, zt := range est.ZoneTotals {
		resp.ZoneTotals = append(resp.ZoneTotals, zoneTotalDTO{
			ZoneID:   zt.ZoneID,
			ZoneName: zt.ZoneName,
			Subtotal: zt.Subtotal.StringFixed(2),
		})
	}
	return resp
}

// estimateHandler serves GET /api/Estimates?documentId=..&pageNumber=..
type estimateHandler struct {
	store *reconcile.Store
}

func newEstimateHandler(store *reconcile.Store) *estimateHandler {
	return &estimateHandler{store: store}
}

func (h *estimateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	docID, err := uuid.Parse(r.URL.Query().Get("documentId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "documentId must be a valid UUID")
		return
	}
	pageNumber, err := strconv.Atoi(r.URL.Query().Get("pageNumber"))
	if err != nil || pageNumber < 1 {
		writeError(w, http.StatusBadRequest, "pageNumber must be a positive integer")
		return
	}

	key := reconcile.Key{DocumentID: docID, PageNumber: pageNumber}
	entry, ok := h.store.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, "no estimate published for this page")
		return
	}

	writeJSON(w, http.StatusOK, toEstimateResponse(entry))
}

// keyStatus is one entry in the key listing.
type keyStatus struct {
	DocumentID  uuid.UUID       `json:"documentId"`
	PageNumber  int             `json:"pageNumber"`
	Phase       reconcile.Phase `json:"phase"`
	Stale       bool            `json:"stale"`
	Total       string          `json:"total"`
	PublishedAt time.Time       `json:"publishedAt"`
	Runs        int             `json:"runs"`
}

// keysHandler serves GET /api/Estimates/keys.
type keysHandler struct {
	store      *reconcile.Store
	controller *reconcile.Controller
}

func newKeysHandler(store *reconcile.Store, controller *reconcile.Controller) *keysHandler {
	return &keysHandler{store: store, controller: controller}
}

func (h *keysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	keys := h.store.Keys()
	statuses := make([]keyStatus, 0, len(keys))
	for _, key := range keys {
		entry, ok := h.store.Get(key)
		if !ok {
			continue
		}
		statuses = append(statuses, keyStatus{
			DocumentID:  key.DocumentID,
			PageNumber:  key.PageNumber,
			Phase:       h.controller.Phase(key),
			Stale:       entry.Stale,
			Total:       entry.Estimate.Total.StringFixed(2),
			PublishedAt: entry.PublishedAt,
			Runs:        entry.Runs,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"keys":  statuses,
		"count": len(statuses),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":  message,
		"status": status,
	})
}
