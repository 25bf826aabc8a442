package scheduler

import "testing"

func TestStart(t *testing.T) {
	tests := []struct {
		name      string
		current   State
		wantState State
		wantNoOp  bool
	}{
		{"stopped to running", StateStopped, StateRunning, false},
		{"running stays running", StateRunning, StateRunning, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Start(tt.current)
			if got.NewState != tt.wantState {
				t.Errorf("Start() NewState = %q, want %q", got.NewState, tt.wantState)
			}
			if got.NoOp != tt.wantNoOp {
				t.Errorf("Start() NoOp = %v, want %v", got.NoOp, tt.wantNoOp)
			}
			if got.NoOp && got.Warning == "" {
				t.Error("Start() no-op should carry a warning")
			}
		})
	}
}

func TestStop(t *testing.T) {
	tests := []struct {
		name      string
		current   State
		wantState State
		wantNoOp  bool
	}{
		{"running to stopped", StateRunning, StateStopped, false},
		{"stopped stays stopped", StateStopped, StateStopped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stop(tt.current)
			if got.NewState != tt.wantState {
				t.Errorf("Stop() NewState = %q, want %q", got.NewState, tt.wantState)
			}
			if got.NoOp != tt.wantNoOp {
				t.Errorf("Stop() NoOp = %v, want %v", got.NoOp, tt.wantNoOp)
			}
			if got.NoOp && got.Warning == "" {
				t.Error("Stop() no-op should carry a warning")
			}
		})
	}
}

func TestCanBeginTick(t *testing.T) {
	tests := []struct {
		name       string
		source     TickSource
		inFlight   bool
		wantRun    bool
		wantReason string
	}{
		{"idle timer tick runs", SourceTimer, false, true, ""},
		{"idle manual drain runs", SourceManual, false, true, ""},
		{"overlapping timer tick skipped", SourceTimer, true, false, "timer drain skipped: queue drain already in progress"},
		{"overlapping manual drain skipped", SourceManual, true, false, "manual drain skipped: queue drain already in progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanBeginTick(tt.source, tt.inFlight)
			if got.Run != tt.wantRun {
				t.Errorf("CanBeginTick() Run = %v, want %v", got.Run, tt.wantRun)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("CanBeginTick() Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	if InitialState() != StateStopped {
		t.Errorf("InitialState() = %q, want %q", InitialState(), StateStopped)
	}
}
