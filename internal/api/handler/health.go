package handler

import (
	"github.com/gofiber/fiber/v2"
)

const serviceName = "face_verification"

// ModelStatus reports whether the embedding model is usable
type ModelStatus interface {
	ModelLoaded() bool
	ModelName() string
}

type HealthHandler struct {
	model ModelStatus
}

func NewHealthHandler(model ModelStatus) *HealthHandler {
	return &HealthHandler{model: model}
}

type RootResponse struct {
	Message     string `json:"message"`
	ModelStatus string `json:"model_status"`
	Status      string `json:"status"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	ModelLoaded bool   `json:"model_loaded"`
	Model       string `json:"model,omitempty"`
}

type ReadyResponse struct {
	Status string `json:"status"`
}

// Root GET / - service banner
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	modelStatus := "not loaded"
	if h.model.ModelLoaded() {
		modelStatus = "loaded"
	}

	return c.JSON(RootResponse{
		Message:     "Face Verification API",
		ModelStatus: modelStatus,
		Status:      "active",
	})
}

// Health GET /health - liveness, always 200
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:      "healthy",
		Service:     serviceName,
		ModelLoaded: h.model.ModelLoaded(),
		Model:       h.model.ModelName(),
	})
}

// Ready GET /ready - 503 until a model is loaded
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if !h.model.ModelLoaded() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ReadyResponse{
			Status: "model not loaded",
		})
	}

	return c.JSON(ReadyResponse{
		Status: "ready",
	})
}
