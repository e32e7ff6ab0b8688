package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/sentisearch/internal/api"
	"github.com/cloo-solutions/sentisearch/internal/camera"
)

type DeviceService interface {
	Listen(ctx context.Context) error
	OpenCamera(ctx context.Context) error
	Capture(ctx context.Context) error
	CloseCamera()
	CameraState() camera.State
	DismissIntro(ctx context.Context) error
}

type DeviceHandler struct {
	svc DeviceService
}

func NewDeviceHandler(svc DeviceService) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

type CameraResponse struct {
	State string `json:"state"`
}

func (h *DeviceHandler) cameraState(w http.ResponseWriter) {
	api.Success(w, http.StatusOK, CameraResponse{State: h.svc.CameraState().String()})
}

func (h *DeviceHandler) OpenCamera(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.OpenCamera(r.Context()); err != nil {
		api.HandleError(w, r, err)
		return
	}
	h.cameraState(w)
}

// Capture grabs and uploads one frame. A failed upload leaves the camera
// streaming so the client can retry.
func (h *DeviceHandler) Capture(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Capture(r.Context()); err != nil {
		api.HandleError(w, r, err)
		return
	}
	h.cameraState(w)
}

func (h *DeviceHandler) CloseCamera(w http.ResponseWriter, r *http.Request) {
	h.svc.CloseCamera()
	h.cameraState(w)
}

func (h *DeviceHandler) Listen(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Listen(r.Context()); err != nil {
		api.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeviceHandler) DismissIntro(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DismissIntro(r.Context()); err != nil {
		api.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
