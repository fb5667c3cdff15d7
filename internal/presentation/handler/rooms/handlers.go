package rooms

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdefense/quizdefense/internal/domain"
	"github.com/quizdefense/quizdefense/internal/infrastructure/json"
	"github.com/quizdefense/quizdefense/internal/infrastructure/validate"
	"github.com/quizdefense/quizdefense/internal/registry"
)

type Handler struct {
	registry *registry.Registry
}

func NewHandler(registry *registry.Registry) *Handler {
	return &Handler{registry: registry}
}

// GetRoomHandler returns the roster snapshot for a live room. Read-only:
// all mutations go through the websocket session.
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "roomCode")

	validateCode := validate.Compose(
		validate.Required(),
		validate.Length(4),
		validate.DigitsOnly(),
	)
	if err := validateCode(code); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	info, err := h.registry.RoomInfo(code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteNotFoundError(w, "Room not found")
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, info)
}

// GetStatsHandler reports registry occupancy.
func (h *Handler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	json.Write(w, http.StatusOK, statsResponse{
		ActiveRooms: h.registry.RoomCount(),
	})
}
