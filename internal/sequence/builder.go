// Package sequence builds ordered lists of (command, expected patterns) steps.
//
// A Builder accepts strictly alternating input and output declarations:
//
//	b := sequence.New().
//		Input("-Si", "wget").
//		Output(`^Package: wget$`).
//		Exec("echo", "hi").
//		Output("hi")
//	if err := b.Err(); err != nil { ... }
//
// The first misuse is recorded and every later call is ignored, so a chain
// can be checked once at the end.
package sequence

// state is either idle or awaitingOutput.
type state interface {
	isState()
}

type idle struct{}

type awaitingOutput struct {
	cmd Command
}

func (idle) isState()           {}
func (awaitingOutput) isState() {}

// Builder accumulates steps from alternating Input/Exec and Output calls.
// The zero value is ready to use.
type Builder struct {
	steps []Step
	state state
	err   error
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{state: idle{}}
}

// Input declares a command appended to the runner's base invocation.
func (b *Builder) Input(args ...string) *Builder {
	return b.input(Command{Args: args})
}

// Exec declares a command run through the platform shell.
func (b *Builder) Exec(args ...string) *Builder {
	return b.input(Command{Args: args, Shell: true})
}

func (b *Builder) input(cmd Command) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.state.(awaitingOutput); ok {
		b.err = &ProtocolError{Reason: "consecutive input"}
		return b
	}
	b.state = awaitingOutput{cmd: cmd.clone()}
	return b
}

// Output pairs the pending input with the patterns its output must contain.
func (b *Builder) Output(patterns ...string) *Builder {
	if b.err != nil {
		return b
	}
	pending, ok := b.state.(awaitingOutput)
	if !ok || len(patterns) == 0 {
		b.err = &ProtocolError{Reason: "output without input"}
		return b
	}
	b.steps = append(b.steps, NewStep(pending.cmd, patterns))
	b.state = idle{}
	return b
}

// Err returns the first protocol violation, if any.
func (b *Builder) Err() error {
	return b.err
}

// Pending reports whether an input is waiting for its output.
func (b *Builder) Pending() bool {
	_, ok := b.state.(awaitingOutput)
	return ok
}

// PendingCommand returns the input waiting for its output, if any.
func (b *Builder) PendingCommand() (Command, bool) {
	pending, ok := b.state.(awaitingOutput)
	if !ok {
		return Command{}, false
	}
	return pending.cmd.clone(), true
}

// Len returns the number of completed steps.
func (b *Builder) Len() int {
	return len(b.steps)
}

// Steps returns a copy of the completed steps in declaration order.
func (b *Builder) Steps() []Step {
	return append([]Step(nil), b.steps...)
}

// Sequence returns the steps ready for execution. It fails with the recorded
// protocol error, a ConfigurationError when no step was completed, or a
// ProtocolError when an input was never closed by an output.
func (b *Builder) Sequence() ([]Step, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.steps) == 0 {
		return nil, &ConfigurationError{Reason: "sequence not configured"}
	}
	if b.Pending() {
		return nil, &ProtocolError{Reason: "trailing input without output"}
	}
	return b.Steps(), nil
}
