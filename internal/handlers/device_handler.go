package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"vocabdrill/internal/auth"
	"vocabdrill/internal/credentials"
	"vocabdrill/internal/models"
	"vocabdrill/internal/security"
)

type deviceWriter interface {
	Create(device *models.Device) error
	Get(deviceID string) (*models.Device, error)
}

// DeviceHandler handles device registration and token exchange
type DeviceHandler struct {
	devices  deviceWriter
	tokens   *auth.TokenIssuer
	tokenTTL time.Duration
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(devices deviceWriter, tokens *auth.TokenIssuer, tokenTTL time.Duration) *DeviceHandler {
	return &DeviceHandler{
		devices:  devices,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// Register handles POST /api/devices/register
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	// Body is optional: registration without a reminder email is valid
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", "", nil)
		return
	}

	secret, err := credentials.GenerateDeviceSecret()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Failed to register device", "Error generating device secret", err)
		return
	}

	hash, err := security.HashSecret(secret)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Failed to register device", "Error hashing device secret", err)
		return
	}

	device := &models.Device{
		ID:            credentials.GenerateDeviceID(),
		SecretHash:    hash,
		ReminderEmail: req.ReminderEmail,
		Active:        true,
		RegisteredAt:  time.Now().UTC(),
	}

	if err := h.devices.Create(device); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Failed to register device", "Error creating device", err)
		return
	}

	// A fresh token saves the client one round trip after registration
	token, err := h.tokens.Issue(device.ID, time.Now().UTC())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Failed to register device", "Error signing token", err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		DeviceID:  device.ID,
		Secret:    secret,
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}

// Token handles POST /api/devices/token
func (h *DeviceHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", "", nil)
		return
	}
	if req.DeviceID == "" || req.Secret == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "deviceId and secret are required", "", nil)
		return
	}

	device, err := h.devices.Get(req.DeviceID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Internal server error", "Error loading device", err)
		return
	}
	if device == nil || !device.Active || !security.CheckSecret(req.Secret, device.SecretHash) {
		respondWithError(w, http.StatusUnauthorized, "invalid_credentials", "Unknown device or wrong secret", "", nil)
		return
	}

	token, err := h.tokens.Issue(device.ID, time.Now().UTC())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Failed to issue token", "Error signing token", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}
