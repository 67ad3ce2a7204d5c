package webtui

import (
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestNewServer_RequiresDir(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatalf("expected error without dir")
	}
}

func TestTerminalPage(t *testing.T) {
	srv, err := NewServer(ServerConfig{Dir: "/tmp/ws", Document: "menu.json"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	res, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusFound || res.Header.Get("Location") != "/terminal" {
		t.Fatalf("expected redirect to /terminal; got %d %q", res.StatusCode, res.Header.Get("Location"))
	}

	res, err = http.Get(ts.URL + "/static/terminal.js")
	if err != nil {
		t.Fatalf("GET terminal.js: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("terminal.js status %d", res.StatusCode)
	}
}

func TestSessionArgs(t *testing.T) {
	s := &Server{cfg: ServerConfig{Dir: "/w", Document: "menu.json"}}
	if got := strings.Join(s.sessionArgs(), " "); got != "--dir /w --document menu.json" {
		t.Fatalf("args: %q", got)
	}
}

func TestWS_StreamsPTYOutput(t *testing.T) {
	gotArgs := make(chan []string, 1)
	srv, err := NewServer(ServerConfig{
		Dir: "/w",
		Command: func(args []string) (*exec.Cmd, error) {
			gotArgs <- args
			return exec.Command("sh", "-c", "echo tree-ready; sleep 5"), nil
		},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"resize","cols":80,"rows":24}`))

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var out strings.Builder
	for !strings.Contains(out.String(), "tree-ready") {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v (got %q)", err, out.String())
		}
		out.Write(data)
	}
	if args := <-gotArgs; strings.Join(args, " ") != "--dir /w" {
		t.Fatalf("child args: %v", args)
	}
}
