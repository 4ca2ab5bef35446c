package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/request"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/response"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/codes"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/records"
)

// AdminHandler handles code pool provisioning and record maintenance
type AdminHandler struct {
	game    model.GameConfig
	codes   *codes.Service
	records *records.Manager
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin handler bound to game
func NewAdminHandler(game model.GameConfig, codeService *codes.Service, recordManager *records.Manager, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		game:    game,
		codes:   codeService,
		records: recordManager,
		logger:  logger.With(slog.String("component", "admin-api")),
	}
}

// CodeStats handles GET /api/v1/admin/codes
func (h *AdminHandler) CodeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.codes.Stats(r.Context(), h.game.ID, h.game.PointLevels)
	if err != nil {
		h.logger.Error("failed to read code pools", slog.Any("error", err))
		WriteError(w, err)
		return
	}
	response.List(w, stats)
}

// ProvisionCodes handles POST /api/v1/admin/codes/{level}
func (h *AdminHandler) ProvisionCodes(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["level"]
	level, ok := h.game.LevelByKey(key)
	if !ok {
		WriteError(w, NewUnknownLevelError(key))
		return
	}

	var req request.ProvisionCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if len(req.Codes) == 0 {
		WriteError(w, NewInvalidRequestError("codes is required"))
		return
	}

	added, err := h.codes.Provision(r.Context(), h.game.ID, level, req.Codes)
	if err != nil {
		h.logger.Error("failed to provision codes",
			slog.String("level", key),
			slog.Any("error", err))
		WriteError(w, err)
		return
	}

	response.Created(w, response.ProvisionResult{Level: key, Added: added})
}

// FindPlayers handles GET /api/v1/admin/players?username=
// Every match is returned so duplicate usernames can be resolved by hand.
func (h *AdminHandler) FindPlayers(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}

	matches, err := h.records.FindByUsername(r.Context(), h.game.ID, username)
	if err != nil {
		h.logger.Error("failed to find players", slog.Any("error", err))
		WriteError(w, err)
		return
	}
	response.List(w, response.PlayerRecordsFromModel(matches))
}

// GetPlayer handles GET /api/v1/admin/players/{player_id}
func (h *AdminHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	record, err := h.records.Load(r.Context(), h.game.ID, playerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerRecordFromModel(record))
}

// DeletePlayer handles DELETE /api/v1/admin/players/{player_id}
func (h *AdminHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	if err := h.records.Delete(r.Context(), h.game.ID, playerID); err != nil {
		h.logger.Error("failed to delete player",
			slog.String("player_id", string(playerID)),
			slog.Any("error", err))
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
