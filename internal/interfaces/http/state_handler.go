package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-sync/internal/application/dto"
	"github.com/jhoicas/Inventario-sync/internal/application/inventory"
	"github.com/jhoicas/Inventario-sync/internal/application/view"
)

// DefaultStreamHeartbeat intervalo del comentario ": ping" del stream SSE.
const DefaultStreamHeartbeat = 15 * time.Second

// StateHandler expone el estado publicado: sesión, snapshot, stream SSE y filtro.
type StateHandler struct {
	ctrl      *inventory.Controller
	heartbeat time.Duration
}

// NewStateHandler construye el handler. heartbeat <= 0 usa DefaultStreamHeartbeat.
func NewStateHandler(ctrl *inventory.Controller, heartbeat time.Duration) *StateHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultStreamHeartbeat
	}
	return &StateHandler{ctrl: ctrl, heartbeat: heartbeat}
}

// Session godoc
// @Summary      Estado de la sesión (pantalla de carga / login)
// @Tags         state
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session [get]
func (h *StateHandler) Session(c *fiber.Ctx) error {
	st := h.ctrl.State()
	out := dto.SessionResponse{Loading: st.Loading, Authenticated: st.Identity != nil}
	if st.Identity != nil {
		out.Email = st.Identity.Email
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Estado actual del inventario
// @Tags         state
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StateResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/state [get]
func (h *StateHandler) Get(c *fiber.Ctx) error {
	return c.JSON(ToStateResponse(h.ctrl.State()))
}

// Stream godoc
// @Summary      Stream SSE del estado (evento "state" por cada cambio)
// @Description  El stream es de la identidad del token: si la sesión viva pasa a otra identidad
// @Description  o se cierra, envía "session_ended" y termina.
// @Tags         state
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200
// @Router       /api/events [get]
func (h *StateHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	uid := GetUserID(c)
	ctx, cancel := context.WithCancel(context.Background())
	updates := h.ctrl.Watch(ctx)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case st, ok := <-updates:
				if !ok {
					return
				}
				if st.Identity == nil || st.Identity.ID != uid {
					_, _ = fmt.Fprintf(w, "event: session_ended\nid: %d\ndata: {}\n\n", st.Version)
					_ = w.Flush()
					return
				}
				payload, err := json.Marshal(ToStateResponse(st))
				if err != nil {
					return
				}
				if _, err := fmt.Fprintf(w, "event: state\nid: %d\ndata: %s\n\n", st.Version, payload); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
			}
			// Flush falla cuando el cliente se desconecta.
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}

// SetFilter godoc
// @Summary      Cambiar búsqueda y categoría
// @Tags         state
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FilterRequest  true  "search, category (\"all\" o vacío = todas)"
// @Success      200   {object}  dto.StateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/filter [put]
func (h *StateHandler) SetFilter(c *fiber.Ctx) error {
	var in dto.FilterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.ctrl.SetFilter(c.UserContext(), view.Filter{Search: in.Search, Category: in.Category}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(ToStateResponse(h.ctrl.State()))
}

// ToStateResponse proyecta el estado publicado al formato de la API.
func ToStateResponse(st *inventory.State) dto.StateResponse {
	out := dto.StateResponse{
		Loading:    st.Loading,
		Status:     string(st.Status),
		Filter:     st.Filter,
		Products:   st.Products,
		View:       st.View,
		Alert:      st.View.LowStockAlert(),
		FoundLabel: st.View.FoundLabel(),
		Version:    st.Version,
	}
	if st.Identity != nil {
		out.User = &dto.UserResponse{ID: st.Identity.ID, Email: st.Identity.Email}
	}
	if st.SyncError != nil {
		out.SyncError = st.SyncError.Error()
	}
	return out
}
