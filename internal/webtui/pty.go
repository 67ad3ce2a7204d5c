package webtui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

const (
	defaultCols = 120
	defaultRows = 40
)

// resizeMsg is the only JSON control frame; every other frame is keyboard input.
type resizeMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		return origin == "" || strings.Contains(origin, "://"+r.Host)
	},
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sess, err := s.startSession()
	if err != nil {
		log.WithError(err).Error("start tui session")
		_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start session: "+err.Error()))
		return
	}
	defer sess.close()
	log.WithField("pid", sess.cmd.Process.Pid).Debug("tui session started")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var wg sync.WaitGroup
	done := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		done <- copyToSocket(ctx, sess.ptmx, conn)
	}()
	go func() {
		defer wg.Done()
		done <- copyFromSocket(ctx, conn, sess.ptmx)
	}()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Debug("tui session ended")
	}
	cancel()
	// Unblock whichever pump is still reading.
	sess.close()
	_ = conn.Close()
	wg.Wait()
}

type session struct {
	ptmx *os.File
	cmd  *exec.Cmd
	once sync.Once
}

func (s *Server) startSession() (*session, error) {
	cmd, err := s.cfg.Command(s.sessionArgs())
	if err != nil {
		return nil, err
	}
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: defaultCols, Rows: defaultRows})
	if err != nil {
		return nil, err
	}
	return &session{ptmx: ptmx, cmd: cmd}, nil
}

func (s *session) close() {
	s.once.Do(func() {
		_ = s.ptmx.Close()
		_ = s.cmd.Process.Kill()
		_, _ = s.cmd.Process.Wait()
	})
}

func copyToSocket(ctx context.Context, ptmx *os.File, conn *websocket.Conn) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func copyFromSocket(ctx context.Context, conn *websocket.Conn, ptmx *os.File) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		if mt == websocket.TextMessage && data[0] == '{' {
			var m resizeMsg
			if json.Unmarshal(data, &m) == nil && m.Type == "resize" && m.Cols > 0 && m.Rows > 0 {
				_ = pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(m.Cols), Rows: uint16(m.Rows)})
			}
			continue
		}
		if _, err := ptmx.Write(data); err != nil {
			return err
		}
	}
}
