package sequence

import (
	"errors"
	"slices"
	"testing"
)

func TestBuilder_PreservesOrder(t *testing.T) {
	b := New().
		Input("-Q").Output("apt").
		Exec("echo", "hi").Output("hi", "^h").
		Input("-Qi", "apt").Output(`^Package: apt$`)

	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	steps := b.Steps()
	if len(steps) != 3 {
		t.Fatalf("len(steps) = %d, want 3", len(steps))
	}

	want := []struct {
		args     []string
		shell    bool
		patterns []string
	}{
		{[]string{"-Q"}, false, []string{"apt"}},
		{[]string{"echo", "hi"}, true, []string{"hi", "^h"}},
		{[]string{"-Qi", "apt"}, false, []string{`^Package: apt$`}},
	}
	for i, w := range want {
		cmd := steps[i].Command()
		if !slices.Equal(cmd.Args, w.args) || cmd.Shell != w.shell {
			t.Errorf("step %d command = %+v, want args %v shell %v", i, cmd, w.args, w.shell)
		}
		if !slices.Equal(steps[i].Patterns(), w.patterns) {
			t.Errorf("step %d patterns = %v, want %v", i, steps[i].Patterns(), w.patterns)
		}
	}
}

func TestBuilder_ZeroValue(t *testing.T) {
	var b Builder
	b.Input("a").Output("a")
	if err := b.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}
}

func TestBuilder_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *Builder
		reason string
	}{
		{
			name:   "consecutive input",
			build:  func() *Builder { return New().Input("a").Input("b") },
			reason: "consecutive input",
		},
		{
			name:   "consecutive input after history",
			build:  func() *Builder { return New().Input("a").Output("a").Exec("b").Input("c") },
			reason: "consecutive input",
		},
		{
			name:   "output first",
			build:  func() *Builder { return New().Output("x") },
			reason: "output without input",
		},
		{
			name:   "output twice",
			build:  func() *Builder { return New().Input("a").Output("a").Output("b") },
			reason: "output without input",
		},
		{
			name:   "empty patterns",
			build:  func() *Builder { return New().Input("a").Output() },
			reason: "output without input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Err()
			var pe *ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ProtocolError", err)
			}
			if pe.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", pe.Reason, tt.reason)
			}
		})
	}
}

func TestBuilder_ErrorIsSticky(t *testing.T) {
	b := New().Input("a").Input("b").Output("b")
	if b.Len() != 0 {
		t.Fatalf("Len() = %d after failed chain, want 0", b.Len())
	}
	var pe *ProtocolError
	if !errors.As(b.Err(), &pe) || pe.Reason != "consecutive input" {
		t.Fatalf("error = %v, want the first violation", b.Err())
	}
}

func TestBuilder_StepsAreCopies(t *testing.T) {
	args := []string{"echo", "hi"}
	patterns := []string{"hi"}
	b := New().Input(args...).Output(patterns...)
	args[0] = "mutated"
	patterns[0] = "mutated"

	step := b.Steps()[0]
	if step.Command().Args[0] != "echo" {
		t.Errorf("command aliased caller slice: %v", step.Command().Args)
	}
	if step.Patterns()[0] != "hi" {
		t.Errorf("patterns aliased caller slice: %v", step.Patterns())
	}

	got := step.Patterns()
	got[0] = "changed"
	if step.Patterns()[0] != "hi" {
		t.Error("Patterns() exposed internal slice")
	}
}

func TestBuilder_Sequence(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := New().Sequence()
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("error = %v, want *ConfigurationError", err)
		}
		if ce.Reason != "sequence not configured" {
			t.Errorf("reason = %q", ce.Reason)
		}
	})

	t.Run("only pending input", func(t *testing.T) {
		_, err := New().Input("a").Sequence()
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("error = %v, want *ConfigurationError", err)
		}
	})

	t.Run("trailing input", func(t *testing.T) {
		_, err := New().Input("a").Output("a").Input("b").Sequence()
		var pe *ProtocolError
		if !errors.As(err, &pe) {
			t.Fatalf("error = %v, want *ProtocolError", err)
		}
		if pe.Reason != "trailing input without output" {
			t.Errorf("reason = %q", pe.Reason)
		}
	})

	t.Run("recorded violation wins", func(t *testing.T) {
		_, err := New().Output("x").Sequence()
		var pe *ProtocolError
		if !errors.As(err, &pe) {
			t.Fatalf("error = %v, want *ProtocolError", err)
		}
	})

	t.Run("ok", func(t *testing.T) {
		steps, err := New().Input("a").Output("a").Sequence()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(steps) != 1 {
			t.Fatalf("len(steps) = %d, want 1", len(steps))
		}
	})
}

func TestCommand_String(t *testing.T) {
	if got := (Command{Args: []string{"-S", "wget"}}).String(); got != "-S wget" {
		t.Errorf("String() = %q", got)
	}
	if got := (Command{Args: []string{"echo", "hi"}, Shell: true}).String(); got != "! echo hi" {
		t.Errorf("String() = %q", got)
	}
}

func TestBuilder_PendingCommand(t *testing.T) {
	b := New()
	if _, ok := b.PendingCommand(); ok {
		t.Fatal("new builder reported a pending command")
	}
	b.Exec("echo", "hi")
	cmd, ok := b.PendingCommand()
	if !ok || !cmd.Shell || !slices.Equal(cmd.Args, []string{"echo", "hi"}) {
		t.Fatalf("PendingCommand() = %+v, %v", cmd, ok)
	}
	b.Output("hi")
	if b.Pending() {
		t.Fatal("output did not clear the pending input")
	}
}
