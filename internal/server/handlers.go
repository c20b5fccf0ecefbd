package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cultivatehq/cultivate/backend/internal/network"
	"github.com/cultivatehq/cultivate/backend/internal/repository"
	"github.com/cultivatehq/cultivate/backend/internal/service"
)

// NetworkHandlers exposes the network service over HTTP.
type NetworkHandlers struct {
	logger  *slog.Logger
	service *service.NetworkService
}

// NewNetworkHandlers constructs handlers bound to the network service.
func NewNetworkHandlers(logger *slog.Logger, svc *service.NetworkService) *NetworkHandlers {
	return &NetworkHandlers{
		logger:  logger,
		service: svc,
	}
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

func (h *NetworkHandlers) handleNetworkPaths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	// Graph payloads from the web client carry layout fields we ignore.
	var req service.PathRequest
	if err := decodeJSONLenient(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	res, err := h.service.CalculatePaths(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "calculate paths failed", err, "source_contact_id", req.SourceContactID)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// handleContactPaths serves GET /contacts/{id}/paths.
func (h *NetworkHandlers) handleContactPaths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/contacts/")
	contactID, suffix, found := strings.Cut(rest, "/")
	if !found || suffix != "paths" || strings.TrimSpace(contactID) == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	query := r.URL.Query()
	maxHops := 0
	if raw := query.Get("maxHops"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "maxHops must be a non-negative integer")
			return
		}
		maxHops = v
	}

	res, err := h.service.ContactPaths(r.Context(), service.ContactPathsRequest{
		OwnerID:   query.Get("owner"),
		ContactID: contactID,
		TargetIDs: service.SplitIDs(query.Get("targets")),
		MaxHops:   maxHops,
	})
	if err != nil {
		h.writeServiceError(w, "contact paths failed", err, "contact_id", contactID)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *NetworkHandlers) handleContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.ContactInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	if err := h.service.UpsertContact(r.Context(), req); err != nil {
		h.writeServiceError(w, "upsert contact failed", err, "contact_id", req.ID)
		return
	}
	respondJSON(w, http.StatusCreated, statusResponse{Status: "ok", ID: strings.TrimSpace(req.ID)})
}

func (h *NetworkHandlers) handleConnections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req service.ConnectionInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	id, err := h.service.UpsertConnection(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "upsert connection failed", err, "connection_id", req.ID)
		return
	}
	respondJSON(w, http.StatusCreated, statusResponse{Status: "ok", ID: id})
}

func (h *NetworkHandlers) writeServiceError(w http.ResponseWriter, msg string, err error, args ...any) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, append(args, "error", err)...)
	} else {
		h.logger.Warn(msg, append(args, "error", err)...)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, network.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrEndpointNotFound):
		return http.StatusConflict
	case errors.Is(err, service.ErrSnapshotSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return decode(r, dst, true)
}

func decodeJSONLenient(r *http.Request, dst any) error {
	return decode(r, dst, false)
}

func decode(r *http.Request, dst any, strict bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}
	return decoder.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
