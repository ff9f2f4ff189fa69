package scripting

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/dop251/goja"
	"github.com/wudi/packlist/record"
)

// GojaEngine runs scripts on a single goja runtime. Compiled programs are
// cached by source, so repeated scripts are parsed once.
type GojaEngine struct {
	vm       *goja.Runtime
	programs map[string]*goja.Program
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	return &GojaEngine{vm: vm, programs: make(map[string]*goja.Program)}
}

func (e *GojaEngine) Set(name string, value interface{}) error {
	return e.vm.Set(name, value)
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	prog, err := e.program(script)
	if err != nil {
		return nil, err
	}
	val, err := e.run(ctx, func() (goja.Value, error) { return e.vm.RunProgram(prog) })
	if err != nil {
		return nil, err
	}
	return val.Export(), nil
}

func (e *GojaEngine) program(script string) (*goja.Program, error) {
	if prog, ok := e.programs[script]; ok {
		return prog, nil
	}
	prog, err := goja.Compile("", script, false)
	if err != nil {
		return nil, err
	}
	e.programs[script] = prog
	return prog, nil
}

// run executes fn, interrupting the VM when ctx is done.
func (e *GojaEngine) run(ctx context.Context, fn func() (goja.Value, error)) (goja.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := fn()
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val, nil
}

// ScriptFilter evaluates a JavaScript expression against every record. The
// record is exposed as the global `record` with snake_case field names; the
// script's completion value is coerced to a boolean the way JavaScript does.
//
//	record.net_weight > 0 && record.color !== "SAMPLE"
//
// Engines are not goroutine safe, so calls are serialized.
type ScriptFilter struct {
	mu     sync.Mutex
	engine Engine
	script string
}

// NewScriptFilter checks the script syntax and binds it to a fresh goja engine.
func NewScriptFilter(script string) (*ScriptFilter, error) {
	return NewScriptFilterWithEngine(NewEngine(), script)
}

// NewScriptFilterWithEngine runs the filter on engine.
func NewScriptFilterWithEngine(engine Engine, script string) (*ScriptFilter, error) {
	if _, err := goja.Compile("filter", script, false); err != nil {
		return nil, fmt.Errorf("compile filter script: %w", err)
	}
	return &ScriptFilter{engine: engine, script: script}, nil
}

func (f *ScriptFilter) Keep(ctx context.Context, rec record.Record) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.engine.Set("record", rec.Map()); err != nil {
		return true, err
	}
	val, err := f.engine.Execute(ctx, f.script)
	if err != nil {
		return true, fmt.Errorf("run filter script: %w", err)
	}
	return truthy(val), nil
}

// truthy applies JavaScript boolean coercion to an exported value.
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}
