package signal

import "github.com/dkeye/Chat/internal/core"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendEvent(conn, core.EventPong, nil)
}
