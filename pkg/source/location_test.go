package source

import "testing"

func TestLocationPosition(t *testing.T) {
	f := NewFile("config.cpp", "src", 0, []byte("alpha\nbeta\n"))

	loc := Location{File: f, Offset: 6}
	line, col := loc.Position()
	if line != 2 || col != 1 {
		t.Errorf("Position() = (%d, %d), want (2, 1)", line, col)
	}
	if !loc.IsValid() {
		t.Error("location with a file should be valid")
	}
	if got := loc.String(); got != "config.cpp:2:1" {
		t.Errorf("String() = %q", got)
	}
}

func TestLocationZeroValue(t *testing.T) {
	var loc Location
	if loc.IsValid() {
		t.Error("zero location should be invalid")
	}
	if line, col := loc.Position(); line != 0 || col != 0 {
		t.Errorf("Position() of zero location = (%d, %d)", line, col)
	}
	if got := loc.String(); got != "<unknown>" {
		t.Errorf("String() = %q", got)
	}
}

func TestExpansionFrames(t *testing.T) {
	f := NewFile("config.cpp", "src", 0, []byte("OUTER\n"))

	outer := &Expansion{Macro: "OUTER", Site: Location{File: f, Offset: 0}}
	inner := &Expansion{Macro: "INNER", Site: Location{File: f, Offset: 2}, Parent: outer}

	if got := inner.Depth(); got != 2 {
		t.Errorf("Depth() = %d, want 2", got)
	}

	frames := inner.Frames()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Macro != "OUTER" || frames[1].Macro != "INNER" {
		t.Errorf("frames out of order: %q then %q", frames[0].Macro, frames[1].Macro)
	}

	var none *Expansion
	if none.Depth() != 0 || len(none.Frames()) != 0 {
		t.Error("nil chain should have no frames")
	}
}
