package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sortable-tree/internal/gesture"
	"sortable-tree/internal/mutate"

	"github.com/gorilla/websocket"
)

const (
	msgDragStart = "dragStart"
	msgDragOver  = "dragOver"
	msgDragLeave = "dragLeave"
	msgDrop      = "drop"
	msgDragEnd   = "dragEnd"
)

// wsMsg is one drag event from the page. Pointer and Row share the page's
// coordinate space.
type wsMsg struct {
	Type     string        `json:"type"`
	ItemID   string        `json:"itemId,omitempty"`
	TargetID string        `json:"targetId,omitempty"`
	Pointer  gesture.Point `json:"pointer"`
	Row      gesture.Rect  `json:"row"`
}

type wsReply struct {
	Type     string            `json:"type"`
	ItemID   string            `json:"itemId,omitempty"`
	Feedback *gesture.Feedback `json:"feedback,omitempty"`
	Effects  []mutate.Effect   `json:"effects,omitempty"`
	Error    string            `json:"error,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// handleWS runs drag sessions for one page. At most one session is live per
// connection; a disconnect ends it like dragEnd.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	d := &dragConn{srv: s, conn: conn}
	defer d.end(context.Background())

	ctx := r.Context()
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var m wsMsg
		if err := json.Unmarshal(data, &m); err != nil {
			_ = d.reply(wsReply{Type: "error", Error: "invalid message: " + err.Error()})
			continue
		}
		if err := d.handle(ctx, m); err != nil {
			return
		}
	}
}

type dragConn struct {
	srv     *Server
	conn    *websocket.Conn
	session *gesture.Session
}

func (d *dragConn) reply(v wsReply) error {
	_ = d.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return d.conn.WriteJSON(v)
}

// handle applies one message. Only write failures are returned; protocol errors are
// reported to the page.
func (d *dragConn) handle(ctx context.Context, m wsMsg) error {
	e := d.srv.cfg.Editor
	switch m.Type {
	case msgDragStart:
		d.end(ctx)
		s, err := e.BeginDrag(ctx, strings.TrimSpace(m.ItemID))
		if err != nil {
			return d.reply(wsReply{Type: "error", Error: err.Error()})
		}
		d.session = s
		return d.reply(wsReply{Type: "started", ItemID: s.DraggedID()})
	case msgDragOver:
		if d.session == nil {
			return d.reply(wsReply{Type: "error", Error: "dragOver without dragStart"})
		}
		fb := e.DragOver(d.session, strings.TrimSpace(m.TargetID), gesture.Input{
			Pointer:        m.Pointer,
			Row:            m.Row,
			IndentPerLevel: d.srv.cfg.IndentPerLevel,
		})
		return d.reply(wsReply{Type: "feedback", ItemID: d.session.DraggedID(), Feedback: &fb})
	case msgDragLeave:
		if d.session != nil {
			d.session.Leave()
		}
		return d.reply(wsReply{Type: "feedback", Feedback: &gesture.Feedback{}})
	case msgDrop:
		if d.session == nil {
			return d.reply(wsReply{Type: "error", Error: "drop without dragStart"})
		}
		s := d.session
		d.session = nil
		effects, err := e.Drop(ctx, s)
		if err != nil {
			return d.reply(wsReply{Type: "error", ItemID: s.DraggedID(), Effects: effects, Error: err.Error()})
		}
		return d.reply(wsReply{Type: "dropped", ItemID: s.DraggedID(), Effects: effects})
	case msgDragEnd:
		id := ""
		if d.session != nil {
			id = d.session.DraggedID()
		}
		d.end(ctx)
		return d.reply(wsReply{Type: "ended", ItemID: id})
	default:
		return d.reply(wsReply{Type: "error", Error: "unknown message type: " + m.Type})
	}
}

// end aborts the live session, restoring the dragged row.
func (d *dragConn) end(ctx context.Context) {
	if d.session == nil {
		return
	}
	s := d.session
	d.session = nil
	if err := d.srv.cfg.Editor.AbortDrag(ctx, s); err != nil {
		log.WithError(err).WithField("itemId", s.DraggedID()).Warn("abort drag")
	}
}
