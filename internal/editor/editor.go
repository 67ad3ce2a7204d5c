// Package editor owns the live forest. Every mutation is serialized through Dispatch,
// which reduces, persists and fans out the resulting effect.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sortable-tree/internal/gesture"
	"sortable-tree/internal/model"
	"sortable-tree/internal/mutate"
	"sortable-tree/internal/store"
	"sortable-tree/internal/tree"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "editor")

// ErrEmptyClipboard is returned by Paste when nothing was copied yet.
var ErrEmptyClipboard = errors.New("clipboard is empty")

type Options struct {
	Forest model.Forest

	// Save persists the forest after each change. Nil keeps the editor in memory.
	Save      func(model.Forest) error
	Clipboard store.Clipboard
	Events    store.EventLog

	ExpandDelay time.Duration
	Schedule    gesture.Scheduler
}

type Editor struct {
	opts Options

	mu    sync.Mutex
	state mutate.State

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan mutate.Effect
}

func New(opts Options) *Editor {
	f := opts.Forest
	if f == nil {
		f = model.Forest{}
	}
	return &Editor{
		opts:  opts,
		state: mutate.State{Forest: f},
		subs:  map[int]chan mutate.Effect{},
	}
}

// State is a snapshot; the forest is immutable so callers may keep it.
func (e *Editor) State() mutate.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Forest() model.Forest {
	return e.State().Forest
}

// Dispatch reduces a against the current state. On an invariant error the state is
// left untouched. Persistence failures are returned after the in-memory state has
// advanced.
func (e *Editor) Dispatch(ctx context.Context, a mutate.Action) (mutate.Effect, error) {
	e.mu.Lock()
	prev := e.state
	next, err := mutate.Reduce(prev, a)
	if err != nil {
		e.mu.Unlock()
		log.WithError(err).WithField("action", mutate.Describe(a)).Error("dispatch failed")
		return mutate.Effect{}, err
	}
	e.state = next
	changed := !sameForest(prev.Forest, next.Forest)
	eff := mutate.EffectFor(a, prev, next)
	perr := e.persistLocked(ctx, a, eff, next, changed)
	e.mu.Unlock()

	log.WithFields(logrus.Fields{"action": mutate.Describe(a), "changed": changed}).Debug("dispatch")

	e.broadcast(eff)
	return eff, perr
}

func (e *Editor) persistLocked(ctx context.Context, a mutate.Action, eff mutate.Effect, next mutate.State, changed bool) error {
	var errs []error

	if eff.CopyID != "" && e.opts.Clipboard != nil {
		if clone, ok := tree.Find(next.Forest, eff.CopyID); ok {
			if err := e.opts.Clipboard.Save(ctx, clone); err != nil {
				errs = append(errs, fmt.Errorf("clipboard: %w", err))
			}
		}
	}
	if changed && e.opts.Save != nil {
		if err := e.opts.Save(next.Forest); err != nil {
			errs = append(errs, fmt.Errorf("save document: %w", err))
		}
	}
	if e.opts.Events != nil {
		payload, err := mutate.EncodeAction(a)
		if err == nil {
			err = e.opts.Events.Append(ctx, store.NewEvent(string(a.Type()), a.Subject(), payload))
		}
		if err != nil {
			// The log is a record, not the source of truth.
			log.WithError(err).Warn("event log append failed")
		}
	}
	return errors.Join(errs...)
}

// sameForest reports whether the reducer handed back the input forest untouched.
func sameForest(a, b model.Forest) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// Paste inserts the clipboard contents at the end of the top level.
func (e *Editor) Paste(ctx context.Context) (mutate.Effect, error) {
	if e.opts.Clipboard == nil {
		return mutate.Effect{}, ErrEmptyClipboard
	}
	n, ok, err := e.opts.Clipboard.Load(ctx)
	if err != nil {
		return mutate.Effect{}, err
	}
	if !ok {
		return mutate.Effect{}, ErrEmptyClipboard
	}
	return e.Dispatch(ctx, mutate.Paste{Item: n})
}

// Subscribe returns a channel of effects. Slow subscribers miss effects rather than
// blocking dispatch.
func (e *Editor) Subscribe() (<-chan mutate.Effect, func()) {
	ch := make(chan mutate.Effect, 16)
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = ch
	e.subMu.Unlock()

	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
	}
}

func (e *Editor) broadcast(eff mutate.Effect) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- eff:
		default:
		}
	}
}

func (e *Editor) Find(id string) (model.Node, error) {
	n, ok := tree.Find(e.Forest(), id)
	if !ok {
		return model.Node{}, mutate.NotFoundError{Kind: "item", ID: id}
	}
	return n, nil
}

func (e *Editor) PathToItem(id string) ([]string, error) {
	p, ok := tree.PathToItem(e.Forest(), id)
	if !ok {
		return nil, mutate.NotFoundError{Kind: "item", ID: id}
	}
	return p, nil
}

// ChildrenOf lists the children of id; model.RootID lists the top level.
func (e *Editor) ChildrenOf(id string) ([]model.Node, error) {
	f := e.Forest()
	if id != model.RootID {
		if _, ok := tree.Find(f, id); !ok {
			return nil, mutate.NotFoundError{Kind: "item", ID: id}
		}
	}
	kids := tree.ChildrenOf(f, id)
	if kids == nil {
		kids = []model.Node{}
	}
	return kids, nil
}

func (e *Editor) MoveTargets(draggedID string) ([]tree.Target, error) {
	f := e.Forest()
	if _, ok := tree.Find(f, draggedID); !ok {
		return nil, mutate.NotFoundError{Kind: "item", ID: draggedID}
	}
	return tree.MoveTargets(f, draggedID), nil
}
