package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

type ConfigHandler struct {
	app     *pocketbase.PocketBase
	configs *services.ConfigService
}

func NewConfigHandler(app *pocketbase.PocketBase, configs *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{
		app:     app,
		configs: configs,
	}
}

// GetMintingConfig - Fetch the event's minting config, materializing the
// safe defaults on first read
func (h *ConfigHandler) GetMintingConfig(e *core.RequestEvent) error {
	cfg, err := h.configs.GetOrCreateDefault(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return lifecycleError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"config": cfg})
}

// UpdateMintingConfig - Apply a partial update to the event's minting config
func (h *ConfigHandler) UpdateMintingConfig(e *core.RequestEvent) error {
	var patch models.MintingConfigPatch
	if err := e.BindBody(&patch); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	cfg, err := h.configs.Upsert(e.Request.Context(), e.Request.PathValue("eventId"), &patch)
	if err != nil {
		return lifecycleError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"config": cfg})
}
