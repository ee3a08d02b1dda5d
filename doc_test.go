package wdl

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExecutor answers every call with a fixed map of outputs, echoing back
// whatever was passed in under a "echo_" prefix so a test can assert the
// executor actually received the values evalCall resolved.
type stubExecutor struct{}

func (stubExecutor) Execute(ctx context.Context, callName string, inputs map[string]Value) (map[string]Value, error) {
	out := map[string]Value{}
	for k, v := range inputs {
		out["echo_"+k] = v
	}
	return out, nil
}

// taskRunnerExecutor is a CallExecutor that actually runs the named task's
// own command and output sections in-process, standing in for the
// process/container machinery a real executor would drive.
type taskRunnerExecutor struct {
	td *TypedDocument
	rt *Runtime
}

func (e taskRunnerExecutor) Execute(ctx context.Context, callName string, inputs map[string]Value) (map[string]Value, error) {
	var task *TaskDecl
	for _, tk := range e.td.Doc.Tasks {
		if tk.Name == callName {
			task = tk
		}
	}
	if task == nil {
		return nil, fmt.Errorf("no such task %q", callName)
	}
	_, env, err := EvaluateTaskCommand(ctx, e.rt, e.td, task, inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := EvaluateTaskOutputs(ctx, e.rt, e.td, task, env)
	if err != nil {
		return nil, err
	}
	return outputs, nil
}

func TestLoadAndCheckEndToEnd(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"main.wdl": `version 1.0

task greet {
  input {
    String name
  }
  command {
    echo hello ~{name}
  }
  output {
    String greeting = "hi ~{name}"
  }
}
`,
	}}
	td, err := LoadAndCheck(context.Background(), reader, NewRegistry(), "main.wdl")
	assert.Nil(t, err)
	assert.False(t, td.Errors.HasFatal())
	assert.Contains(t, td.Tasks, "greet")
}

func TestEvaluateTaskCommandMaterializesPlaceholder(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"main.wdl": `version 1.0

task greet {
  input {
    String name
  }
  command {
    echo hello ~{name}
  }
  output {
    String greeting = "done"
  }
}
`,
	}}
	td, err := LoadAndCheck(context.Background(), reader, NewRegistry(), "main.wdl")
	assert.Nil(t, err)

	var task *TaskDecl
	for _, tk := range td.Doc.Tasks {
		if tk.Name == "greet" {
			task = tk
		}
	}
	assert.NotNil(t, task)

	rt := &Runtime{Reader: reader, WorkDir: "."}
	cmd, env, cerr := EvaluateTaskCommand(context.Background(), rt, td, task, map[string]Value{"name": StringValue("world")})
	assert.Nil(t, cerr)
	assert.Equal(t, "echo hello world\n", cmd)

	outputs, oerr := EvaluateTaskOutputs(context.Background(), rt, td, task, env)
	assert.Nil(t, oerr)
	assert.Equal(t, "done", outputs["greeting"].Str)
}

func TestEvaluateWorkflowScatterAndConditional(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"main.wdl": `version 1.0

workflow w {
  input {
    Array[Int] xs
    Boolean doIt
  }
  scatter (x in xs) {
    Int doubled = x * 2
  }
  if (doIt) {
    Int bonus = 100
  }
  output {
    Array[Int] doubles = doubled
    Int? maybeBonus = bonus
  }
}
`,
	}}
	td, err := LoadAndCheck(context.Background(), reader, NewRegistry(), "main.wdl")
	assert.Nil(t, err)
	assert.False(t, td.Errors.HasFatal())

	rt := &Runtime{Reader: reader, WorkDir: "."}
	inputs := map[string]Value{
		"xs":   ArrayValue(IntType{}, []Value{IntValue(1), IntValue(2), IntValue(3)}),
		"doIt": BoolValue(true),
	}
	outputs, werr := EvaluateWorkflow(context.Background(), rt, td, td.Doc.Workflow, inputs, stubExecutor{})
	assert.Nil(t, werr)

	doubles := outputs["doubles"]
	assert.Equal(t, KindArray, doubles.Kind)
	assert.Len(t, doubles.Arr, 3)
	assert.Equal(t, int64(2), doubles.Arr[0].Int)
	assert.Equal(t, int64(6), doubles.Arr[2].Int)

	bonus := outputs["maybeBonus"]
	assert.False(t, bonus.IsNull())
	assert.Equal(t, int64(100), bonus.Int)
}

func TestEvaluateWorkflowConditionalFalseYieldsNull(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"main.wdl": `version 1.0

workflow w {
  input {
    Boolean doIt
  }
  if (doIt) {
    Int bonus = 100
  }
  output {
    Int? maybeBonus = bonus
  }
}
`,
	}}
	td, err := LoadAndCheck(context.Background(), reader, NewRegistry(), "main.wdl")
	assert.Nil(t, err)

	rt := &Runtime{Reader: reader, WorkDir: "."}
	outputs, werr := EvaluateWorkflow(context.Background(), rt, td, td.Doc.Workflow, map[string]Value{"doIt": BoolValue(false)}, stubExecutor{})
	assert.Nil(t, werr)
	assert.True(t, outputs["maybeBonus"].IsNull())
}

func TestEvaluateWorkflowCallDispatchesThroughExecutor(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"main.wdl": `version 1.0

task identity {
  input {
    String v
  }
  command {}
  output {
    String out = v
  }
}

workflow w {
  call identity { input: v = "hi" }
  output {
    String result = identity.echo_v
  }
}
`,
	}}
	td, err := LoadAndCheck(context.Background(), reader, NewRegistry(), "main.wdl")
	assert.Nil(t, err)
	assert.False(t, td.Errors.HasFatal())

	rt := &Runtime{Reader: reader, WorkDir: "."}
	outputs, werr := EvaluateWorkflow(context.Background(), rt, td, td.Doc.Workflow, nil, stubExecutor{})
	assert.Nil(t, werr)
	assert.Equal(t, "hi", outputs["result"].Str)
}
