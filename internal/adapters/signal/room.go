package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// handleJoin replies with nothing on success: history and the user list
// are pushed by the room itself.
func (ctl *SignalWSController) handleJoin(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p joinPayload
	if err := decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Str("user", p.Username).Msg("join")
	_, err := ctl.Orch.Join(ctx, sid, p.Username, p.Room)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join dropped")
	case errors.Is(err, domain.ErrUsernameTaken):
		ctl.sendError(conn, "Username is already taken")
	default:
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join failed")
		ctl.sendError(conn, "Could not join the room, please try again")
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(ctx context.Context, sid core.SessionID, conn *WsSignalConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.Leave(ctx, sid)
	ctl.sendEvent(conn, core.EventLeft, struct{}{})
}
