package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Clients also send the room they believe they are in; the server always
// uses the session's own room.
type messagePayload struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

type typingPayload struct {
	Room     string `json:"room"`
	IsTyping bool   `json:"isTyping"`
}

func (ctl *SignalWSController) handleMessage(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data json.RawMessage) {
	var p messagePayload
	if err := decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad message payload")
		return
	}
	if p.Text == "" {
		return
	}
	if user, _, ok := ctl.Orch.WhoAmI(sid); ok {
		allowed, err := ctl.Limiter.Allow(ctx, string(user))
		if err != nil {
			// fail open while the limiter backend is down
			log.Warn().Err(err).Str("module", "signal").Msg("rate limiter unavailable")
		} else if !allowed {
			ctl.sendError(conn, "You are sending messages too fast, slow down")
			return
		}
	}

	err := ctl.Orch.Send(ctx, sid, p.Text)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		ctl.sendError(conn, "Message is too long")
	default:
		ctl.sendError(conn, "Message could not be saved")
	}
}

func (ctl *SignalWSController) handleTyping(ctx context.Context, sid core.SessionID, data json.RawMessage) {
	var p typingPayload
	if err := decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad typing payload")
		return
	}
	ctl.Orch.SetTyping(ctx, sid, p.IsTyping)
}
