package editor

import (
	"context"

	"sortable-tree/internal/gesture"
	"sortable-tree/internal/mutate"
)

// BeginDrag starts a drag session for id. The dragged row is collapsed while it moves,
// and hover-to-expand timers dispatch back through the editor.
func (e *Editor) BeginDrag(ctx context.Context, id string) (*gesture.Session, error) {
	if _, err := e.Find(id); err != nil {
		return nil, err
	}
	s := gesture.NewSession(gesture.SessionOpts{
		DraggedID:   id,
		ExpandDelay: e.opts.ExpandDelay,
		Schedule:    e.opts.Schedule,
		Dispatch: func(a mutate.Action) {
			if _, err := e.Dispatch(context.Background(), a); err != nil {
				log.WithError(err).Warn("hover expand")
			}
		},
	})
	return s, e.dispatchAll(ctx, s.Start(e.Forest()))
}

// DragOver feeds one pointer sample for the session against the current forest.
func (e *Editor) DragOver(s *gesture.Session, targetID string, in gesture.Input) gesture.Feedback {
	return s.Over(e.Forest(), targetID, in)
}

// Drop completes the session and dispatches the move it resolved to, if any. The
// returned effects are in dispatch order.
func (e *Editor) Drop(ctx context.Context, s *gesture.Session) ([]mutate.Effect, error) {
	return e.dispatchCollect(ctx, s.Drop(e.Forest()))
}

// AbortDrag ends a session without moving anything.
func (e *Editor) AbortDrag(ctx context.Context, s *gesture.Session) error {
	return e.dispatchAll(ctx, s.End())
}

func (e *Editor) dispatchAll(ctx context.Context, actions []mutate.Action) error {
	_, err := e.dispatchCollect(ctx, actions)
	return err
}

func (e *Editor) dispatchCollect(ctx context.Context, actions []mutate.Action) ([]mutate.Effect, error) {
	var out []mutate.Effect
	for _, a := range actions {
		eff, err := e.Dispatch(ctx, a)
		if err != nil {
			return out, err
		}
		out = append(out, eff)
	}
	return out, nil
}
