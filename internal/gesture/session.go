package gesture

import (
	"sync"
	"time"

	"sortable-tree/internal/model"
	"sortable-tree/internal/mutate"
	"sortable-tree/internal/tree"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "gesture")

const DefaultExpandDelay = 500 * time.Millisecond

// Scheduler runs fn once after d and returns a func that cancels it.
type Scheduler func(d time.Duration, fn func()) (cancel func())

// TimerScheduler schedules on a real timer.
func TimerScheduler(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

type SessionOpts struct {
	DraggedID string
	// Dispatch receives actions raised asynchronously (hover-to-expand).
	Dispatch    func(mutate.Action)
	ExpandDelay time.Duration
	Schedule    Scheduler
}

// Feedback is what a renderer needs after each pointer sample.
type Feedback struct {
	TargetID          string             `json:"targetId,omitempty"`
	Instruction       *model.Instruction `json:"instruction,omitempty"`
	HighlightParentID string             `json:"highlightParentId,omitempty"`
}

// Session tracks one drag from start to drop. It owns the hover-to-expand timer and
// guarantees a cancelled or stale timer never dispatches.
type Session struct {
	opts SessionOpts

	mu       sync.Mutex
	wasOpen  bool
	targetID string
	instr    *model.Instruction
	expandID string
	cancelFn func()
	gen      uint64
	done     bool
}

func NewSession(opts SessionOpts) *Session {
	if opts.ExpandDelay <= 0 {
		opts.ExpandDelay = DefaultExpandDelay
	}
	if opts.Schedule == nil {
		opts.Schedule = TimerScheduler
	}
	return &Session{opts: opts}
}

func (s *Session) DraggedID() string { return s.opts.DraggedID }

// Start records whether the dragged row was open and returns the collapse to dispatch
// while it is being dragged.
func (s *Session) Start(f model.Forest) []mutate.Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := tree.Find(f, s.opts.DraggedID)
	if !ok {
		return nil
	}
	s.wasOpen = n.Expanded && tree.HasChildren(n)
	if s.wasOpen {
		return []mutate.Action{mutate.Collapse{ItemID: n.ID}}
	}
	return nil
}

// Over interprets a pointer sample over targetID and arms or cancels the expand timer.
func (s *Session) Over(f model.Forest, targetID string, in Input) Feedback {
	instr := Interpret(f, s.opts.DraggedID, targetID, InputFor(f, targetID, in))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return Feedback{}
	}

	if targetID != s.targetID {
		s.cancelLocked()
	}
	s.targetID = targetID
	s.instr = &instr

	if instr.Type != model.InstructionMakeChild {
		s.cancelLocked()
	} else if s.expandID == "" && targetID != s.opts.DraggedID {
		if target, ok := tree.Find(f, targetID); ok && tree.HasChildren(target) && !target.Expanded {
			s.armLocked(targetID)
		}
	}

	fb := Feedback{TargetID: targetID, Instruction: &instr}
	if id, ok := HighlightParentID(f, targetID, instr); ok {
		fb.HighlightParentID = id
	}
	return fb
}

// Leave is the pointer leaving the current target.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.targetID = ""
	s.instr = nil
}

// Drop ends the session and returns the actions to dispatch: the move (when the last
// instruction was droppable) followed by re-expanding a row that was open at start.
func (s *Session) Drop(f model.Forest) []mutate.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.cancelLocked()
	s.done = true

	var out []mutate.Action
	if s.instr != nil && !s.instr.Blocked() && s.targetID != "" {
		out = append(out, mutate.Instruction{
			Instruction: *s.instr,
			ItemID:      s.opts.DraggedID,
			TargetID:    s.targetID,
		})
	} else {
		log.WithFields(logrus.Fields{"itemId": s.opts.DraggedID, "targetId": s.targetID}).Debug("drop without instruction")
	}
	if s.wasOpen {
		out = append(out, mutate.Expand{ItemID: s.opts.DraggedID})
	}
	return out
}

// End cancels everything; used when the drag is aborted or its transport goes away.
// It returns the re-expand for a row collapsed at start, unless Drop already did.
func (s *Session) End() []mutate.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if s.done {
		return nil
	}
	s.done = true
	if s.wasOpen {
		return []mutate.Action{mutate.Expand{ItemID: s.opts.DraggedID}}
	}
	return nil
}

func (s *Session) armLocked(targetID string) {
	s.gen++
	gen := s.gen
	s.expandID = targetID
	s.cancelFn = s.opts.Schedule(s.opts.ExpandDelay, func() { s.fire(gen, targetID) })
}

func (s *Session) cancelLocked() {
	if s.cancelFn != nil {
		s.cancelFn()
		s.cancelFn = nil
	}
	s.expandID = ""
	s.gen++
}

func (s *Session) fire(gen uint64, targetID string) {
	s.mu.Lock()
	if s.done || gen != s.gen || s.expandID != targetID {
		s.mu.Unlock()
		return
	}
	s.cancelFn = nil
	s.expandID = ""
	dispatch := s.opts.Dispatch
	s.mu.Unlock()

	if dispatch != nil {
		log.WithField("itemId", targetID).Debug("hover expand")
		dispatch(mutate.Expand{ItemID: targetID})
	}
}
