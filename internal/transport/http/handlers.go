package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"e2ee-msgcore/internal/domain"
	"e2ee-msgcore/internal/dto"
	"e2ee-msgcore/internal/observability/metrics"
	obsmw "e2ee-msgcore/internal/observability/middleware"
	"e2ee-msgcore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func (h *Handler) publishDevice(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	reqID := obsmw.RequestIDFromContext(r.Context())

	var req dto.PublishDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.DevicesPublishedTotal.WithLabelValues("failure").Inc()
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := h.svc.PublishDevice(r.Context(), actor.UserID, req)
	if err != nil {
		metrics.DevicesPublishedTotal.WithLabelValues("failure").Inc()
		writeServiceError(w, err)
		slog.Warn("device publish failed", "error", err, "user_id", actor.UserID, "request_id", reqID)
		return
	}
	metrics.DevicesPublishedTotal.WithLabelValues("success").Inc()
	slog.Info("device published", "user_id", res.UserID, "device_id", res.DeviceID, "request_id", reqID)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) keysForConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	convID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}
	groups, err := h.svc.KeysForConversation(r.Context(), actor.UserID, convID)
	if err != nil {
		metrics.KeyFetchesTotal.WithLabelValues("failure").Inc()
		writeServiceError(w, err)
		return
	}
	metrics.KeyFetchesTotal.WithLabelValues("success").Inc()
	writeKeys(w, r, groups)
}

func (h *Handler) keysForUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	var req dto.KeysForUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}
		userIDs = append(userIDs, id)
	}
	groups, err := h.svc.KeysForUsers(r.Context(), actor.UserID, userIDs)
	if err != nil {
		metrics.KeyFetchesTotal.WithLabelValues("failure").Inc()
		writeServiceError(w, err)
		return
	}
	metrics.KeyFetchesTotal.WithLabelValues("success").Inc()
	writeKeys(w, r, groups)
}

func (h *Handler) submitEnvelope(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	reqID := obsmw.RequestIDFromContext(r.Context())
	convID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}
	var req dto.SubmitEnvelopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.EnvelopesSubmittedTotal.WithLabelValues("failure").Inc()
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := h.svc.SubmitEnvelope(r.Context(), actor.UserID, convID, req)
	if err != nil {
		metrics.EnvelopesSubmittedTotal.WithLabelValues("failure").Inc()
		writeServiceError(w, err)
		slog.Warn("envelope submit failed", "error", err, "user_id", actor.UserID, "request_id", reqID)
		return
	}
	metrics.EnvelopesSubmittedTotal.WithLabelValues("success").Inc()
	slog.Info("envelope stored", "message_id", res.ID, "conversation_id", res.ConversationID, "request_id", reqID)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) listEnvelopes(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	convID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}
	after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	res, err := h.svc.ListEnvelopes(r.Context(), actor.UserID, convID, after, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteEnvelope(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	msgID, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteEnvelope(r.Context(), actor.UserID, msgID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issuePairingCode(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	res, err := h.svc.IssuePairingCode(actor.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) claimPairing(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	var req dto.ClaimPairingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	groups, err := h.svc.ClaimPairingCode(r.Context(), actor.UserID, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeKeys(w, r, groups)
}

// writeKeys renders either the grouped or the flat shape, both derived from
// the same canonical fan-out result.
func writeKeys(w http.ResponseWriter, r *http.Request, groups []service.UserDevices) {
	if r.URL.Query().Get("flat") == "true" {
		flat := service.Flatten(groups)
		resp := dto.FlatKeysResponse{Devices: make([]dto.DeviceResponse, 0, len(flat))}
		for _, d := range flat {
			resp.Devices = append(resp.Devices, deviceResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp := dto.KeysResponse{Users: make([]dto.UserKeys, 0, len(groups))}
	for _, g := range groups {
		uk := dto.UserKeys{UserID: g.UserID.String(), Devices: make([]dto.DeviceResponse, 0, len(g.Devices))}
		for _, d := range g.Devices {
			uk.Devices = append(uk.Devices, deviceResponse(d))
		}
		resp.Users = append(resp.Users, uk)
	}
	writeJSON(w, http.StatusOK, resp)
}

func deviceResponse(d domain.Device) dto.DeviceResponse {
	return dto.DeviceResponse{
		UserID:      d.UserID.String(),
		DeviceID:    d.DeviceID,
		IdentityKey: d.IdentityKey,
		SigningKey:  d.SigningKey,
		DeviceName:  d.DeviceName,
		DeviceType:  d.DeviceType,
		LastSeenAt:  d.LastSeenAt,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "not authorized", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidKeyMaterial), errors.Is(err, service.ErrInvalidEnvelope):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrDeviceKeyConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		// Storage and collaborator failures are retryable; no internal detail
		// leaves the boundary.
		http.Error(w, "temporary failure, retry", http.StatusServiceUnavailable)
	}
}
