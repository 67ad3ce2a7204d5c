package gesture

import (
	"testing"

	"sortable-tree/internal/model"
)

// A 100x40 row at level 2 starting at x=20.
var row = Rect{Left: 20, Top: 100, Width: 100, Height: 40}

func TestAttach_Standard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		y    float64
		want model.InstructionType
	}{
		{"top edge", 100, model.InstructionReorderAbove},
		{"top quarter", 110, model.InstructionReorderAbove},
		{"middle", 120, model.InstructionMakeChild},
		{"bottom quarter", 130, model.InstructionReorderBelow},
		{"bottom edge", 140, model.InstructionReorderBelow},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Attach(Input{Pointer: Point{X: 80, Y: tt.y}, Row: row, CurrentLevel: 2, Mode: ModeStandard})
			if got.Type != tt.want {
				t.Fatalf("y=%v: got %s, want %s", tt.y, got.Type, tt.want)
			}
			if got.CurrentLevel != 2 || got.IndentPerLevel != DefaultIndentPerLevel {
				t.Fatalf("context not carried: %+v", got)
			}
		})
	}
}

func TestAttach_ExpandedNeverReordersBelow(t *testing.T) {
	t.Parallel()

	for y := 100.0; y <= 140; y += 5 {
		got := Attach(Input{Pointer: Point{X: 80, Y: y}, Row: row, CurrentLevel: 1, Mode: ModeExpanded})
		if got.Type == model.InstructionReorderBelow {
			t.Fatalf("y=%v: expanded row returned reorder-below", y)
		}
		if y <= 110 && got.Type != model.InstructionReorderAbove {
			t.Fatalf("y=%v: got %s, want reorder-above", y, got.Type)
		}
	}
}

func TestAttach_LastInGroupReparent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		x, y      float64
		want      model.InstructionType
		wantLevel int
	}{
		// Inset for level 2 is 20px, so x < 40 is left of the row content.
		{"far left lower half", 21, 135, model.InstructionReparent, 0},
		{"second indent lower half", 32, 135, model.InstructionReparent, 1},
		{"left of row clamps to zero", 5, 135, model.InstructionReparent, 0},
		{"left but upper half", 21, 105, model.InstructionReorderAbove, 0},
		{"left, upper half below quarter", 25, 115, model.InstructionReorderAbove, 0},
		{"left, exactly at centre", 25, 120, model.InstructionReparent, 0},
		{"inside content lower quarter", 80, 135, model.InstructionReorderBelow, 0},
		{"inside content middle", 80, 120, model.InstructionMakeChild, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Attach(Input{Pointer: Point{X: tt.x, Y: tt.y}, Row: row, CurrentLevel: 2, Mode: ModeLastInGroup})
			if got.Type != tt.want {
				t.Fatalf("got %s, want %s", got.Type, tt.want)
			}
			if tt.want == model.InstructionReparent && got.DesiredLevel != tt.wantLevel {
				t.Fatalf("desiredLevel: got %d, want %d", got.DesiredLevel, tt.wantLevel)
			}
		})
	}
}

func TestAttach_TopLevelLastInGroupCannotReparent(t *testing.T) {
	got := Attach(Input{Pointer: Point{X: 0, Y: 139}, Row: Rect{Left: 0, Top: 100, Height: 40}, CurrentLevel: 0, Mode: ModeLastInGroup})
	if got.Type != model.InstructionReorderBelow {
		t.Fatalf("got %s, want reorder-below", got.Type)
	}
}

func TestAttach_Block(t *testing.T) {
	got := Attach(Input{
		Pointer:      Point{X: 80, Y: 120},
		Row:          row,
		CurrentLevel: 1,
		Mode:         ModeStandard,
		Block:        []model.InstructionType{model.InstructionMakeChild},
	})
	if !got.Blocked() {
		t.Fatalf("expected blocked, got %+v", got)
	}
	if got.Unwrap().Type != model.InstructionMakeChild {
		t.Fatalf("desired: got %s", got.Unwrap().Type)
	}

	free := Attach(Input{Pointer: Point{X: 80, Y: 101}, Row: row, CurrentLevel: 1, Block: []model.InstructionType{model.InstructionMakeChild}})
	if free.Blocked() {
		t.Fatalf("reorder-above should not be blocked: %+v", free)
	}
}

func TestParentLevel(t *testing.T) {
	t.Parallel()

	reparent := model.Instruction{Type: model.InstructionReparent, CurrentLevel: 3, DesiredLevel: 1}
	tests := []struct {
		name string
		in   model.Instruction
		want int
	}{
		{"reparent", reparent, 0},
		{"make-child", model.Instruction{Type: model.InstructionMakeChild, CurrentLevel: 2}, 1},
		{"top level reorder", model.Instruction{Type: model.InstructionReorderAbove, CurrentLevel: 0}, -1},
		{"blocked reparent", Block(reparent), 0},
		{"double blocked", Block(Block(model.Instruction{Type: model.InstructionReorderBelow, CurrentLevel: 4})), 3},
	}
	for _, tt := range tests {
		if got := ParentLevel(tt.in); got != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}
