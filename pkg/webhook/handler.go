package webhook

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"costline-hq/costline/pkg/reconcile"
	"costline-hq/costline/pkg/takeoff"
)

// maxBodyBytes caps webhook payloads. Change notifications carry only
// identifiers and action metadata, never measurement data.
const maxBodyBytes = 1 << 20

// Notifier accepts reconciliation triggers. The reconcile controller
// implements it.
type Notifier interface {
	Notify(key reconcile.Key)
}

// Handler accepts change notifications from the takeoff service and
// turns them into reconciliation triggers. The response never waits for
// the run: a valid payload is acknowledged immediately with 202.
type Handler struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewHandler creates a webhook handler feeding the given notifier.
func NewHandler(notifier Notifier) *Handler {
	return &Handler{
		notifier: notifier,
		logger:   slog.Default().With("component", "webhook"),
	}
}

// ServeHTTP handles POST /api/Conditions/PostConditionsChange.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var change takeoff.ConditionsChange
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&change); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		return
	}

	if err := validate(&change); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := reconcile.Key{DocumentID: change.DocumentID, PageNumber: change.PageNumber}
	h.notifier.Notify(key)

	h.logger.Info("change notification accepted",
		"key", key.String(),
		"actions", len(change.Actions))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":          "accepted",
		"documentId":      change.DocumentID,
		"pageNumber":      change.PageNumber,
		"actionsReceived": len(change.Actions),
	})
}

// validate rejects payloads that cannot identify a page or carry
// unknown action metadata.
func validate(change *takeoff.ConditionsChange) error {
	if change.DocumentID == uuid.Nil {
		return fmt.Errorf("documentId is required")
	}
	if change.PageNumber < 1 {
		return fmt.Errorf("pageNumber must be positive, got %d", change.PageNumber)
	}
	for i, action := range change.Actions {
		if !action.ActionName.Valid() {
			return fmt.Errorf("actions[%d]: unknown action %q", i, action.ActionName)
		}
		if !action.EntityType.Valid() {
			return fmt.Errorf("actions[%d]: unknown entity type %q", i, action.EntityType)
		}
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":  message,
		"status": status,
	})
}
