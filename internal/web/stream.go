package web

import (
	"fmt"
	"net/http"
	"time"

	"sortable-tree/internal/mutate"

	"github.com/starfederation/datastar-go/datastar"
)

// effectSignals is the signal patch sent after each effect. The page flashes
// flashId and reads announce into its live region.
type effectSignals struct {
	Effect   mutate.Effect `json:"effect"`
	FlashID  string        `json:"flashId"`
	Announce string        `json:"announce"`
}

func signalsFor(eff mutate.Effect) effectSignals {
	return effectSignals{Effect: eff, FlashID: eff.FlashID(), Announce: eff.Announce}
}

// handleEvents streams the tree: the rendered rows on connect and after every
// dispatched action, followed by the effect as signals.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	effects, cancel := s.cfg.Editor.Subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	if err := s.patchTree(sse); err != nil {
		return
	}

	keepAlive := time.NewTicker(s.cfg.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case eff, ok := <-effects:
			if !ok {
				return
			}
			if err := s.patchTree(sse); err != nil {
				return
			}
			_ = sse.MarshalAndPatchSignals(signalsFor(eff))
		}
	}
}

func (s *Server) patchTree(sse *datastar.ServerSentEventGenerator) error {
	html, err := s.renderTree()
	if err != nil {
		log.WithError(err).Error("render tree")
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
		return nil
	}
	return sse.PatchElements(html, datastar.WithSelector("#tree"), datastar.WithMode(datastar.ElementPatchModeOuter))
}
