package signal

import "github.com/dkeye/Chat/internal/core"

type whoAmIView struct {
	Username string `json:"username,omitempty"`
	Room     string `json:"room,omitempty"`
}

func (ctl *SignalWSController) handleWhoAmI(sid core.SessionID, conn *WsSignalConn) {
	var resp whoAmIView
	if user, room, ok := ctl.Orch.WhoAmI(sid); ok {
		resp.Username = string(user)
		resp.Room = string(room)
	}
	ctl.sendEvent(conn, core.EventWhoAmI, resp)
}
