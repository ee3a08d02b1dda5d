package wdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func parseSrc(t *testing.T, src string) *Document {
	reg := NewRegistry()
	file := reg.Intern("t.wdl", src)
	doc, err := ParseDocument(file)
	assert.Nil(t, err)
	return doc
}

func TestParseMinimalTaskDocument(t *testing.T) {
	doc := parseSrc(t, `version 1.0

task greet {
  input {
    String name
  }
  command {
    echo hello ~{name}
  }
  output {
    String greeting = "hi"
  }
  runtime {
    docker: "ubuntu:latest"
  }
}
`)
	assert.Equal(t, V1_0, doc.Version)
	assert.Len(t, doc.Tasks, 1)
	task := doc.Tasks[0]
	assert.Equal(t, "greet", task.Name)
	assert.Len(t, task.Inputs, 1)
	assert.Equal(t, "name", task.Inputs[0].Name)
	assert.Len(t, task.Outputs, 1)
	assert.NotNil(t, task.Command)
	assert.NotNil(t, task.Runtime)
}

func TestParseWorkflowWithCallScatterConditional(t *testing.T) {
	doc := parseSrc(t, `version 1.0

workflow w {
  input {
    Array[Int] xs
    Boolean doIt
  }
  scatter (x in xs) {
    call greet { input: name = "a" }
  }
  if (doIt) {
    Int y = 1
  }
  output {
    Array[String] greetings = greet.greeting
  }
}
`)
	assert.NotNil(t, doc.Workflow)
	w := doc.Workflow
	assert.Len(t, w.Body, 2)

	scatter, ok := w.Body[0].(*ScatterStmt)
	assert.True(t, ok)
	assert.Equal(t, "x", scatter.Var)
	assert.Len(t, scatter.Body, 1)
	call, ok := scatter.Body[0].(*CallStmt)
	assert.True(t, ok)
	assert.Equal(t, "greet", call.Target)
	assert.Len(t, call.Inputs, 1)
	assert.Equal(t, "name", call.Inputs[0].Name)

	cond, ok := w.Body[1].(*ConditionalStmt)
	assert.True(t, ok)
	assert.Len(t, cond.Body, 1)
}

func TestParseCallWithAliasAndDottedTarget(t *testing.T) {
	doc := parseSrc(t, `version 1.0

workflow w {
  call lib.greet as g { input: name = "a" }
}
`)
	call := doc.Workflow.Body[0].(*CallStmt)
	assert.Equal(t, "lib.greet", call.Target)
	assert.Equal(t, "g", call.Alias)
}

func TestParseRejectsSecondWorkflow(t *testing.T) {
	reg := NewRegistry()
	src := `version 1.0

workflow a {}
workflow b {}
`
	file := reg.Intern("t.wdl", src)
	_, err := ParseDocument(file)
	assert.NotNil(t, err)
	assert.Equal(t, SyntaxError, err.Kind)
}

func TestParseDirectoryTypeRejectedInDraft2(t *testing.T) {
	reg := NewRegistry()
	src := `version draft-2

task t {
  input {
    Directory d
  }
  command {}
}
`
	file := reg.Intern("t.wdl", src)
	_, err := ParseDocument(file)
	assert.NotNil(t, err)
	assert.Equal(t, SyntaxError, err.Kind)
}

func TestParseHintsSectionRejectedOutsideDevelopment(t *testing.T) {
	reg := NewRegistry()
	src := `version 1.0

task t {
  command {}
  hints {
    maxCpu: 4
  }
}
`
	file := reg.Intern("t.wdl", src)
	_, err := ParseDocument(file)
	assert.NotNil(t, err)
	assert.Equal(t, SyntaxError, err.Kind)
}

func TestParseStructDecl(t *testing.T) {
	doc := parseSrc(t, `version 1.0

struct Sample {
  String name
  Int depth
}
`)
	assert.Len(t, doc.Structs, 1)
	s := doc.Structs[0]
	assert.Equal(t, "Sample", s.Name)
	assert.Len(t, s.Members, 2)
}

func TestParseImportWithAliasAndStructRename(t *testing.T) {
	doc := parseSrc(t, `version 1.0

import "lib.wdl" as lib
  alias Sample as LibSample
`)
	assert.Len(t, doc.Imports, 1)
	imp := doc.Imports[0]
	assert.Equal(t, "lib.wdl", imp.URI)
	assert.Equal(t, "lib", imp.Alias)
	assert.Len(t, imp.Structs, 1)
	assert.Equal(t, "Sample", imp.Structs[0].Name)
	assert.Equal(t, "LibSample", imp.Structs[0].Alias)
}

func TestParseMetaSectionLiterals(t *testing.T) {
	doc := parseSrc(t, `version 1.0

task greet {
  command {
    echo hi
  }
  meta {
    author: "grail"
    retries: 3
    internal: false
    tags: ["a", "b"]
    extra: {note: null}
  }
  parameter_meta {
    name: {help: "who to greet"}
  }
}
`)
	task := doc.Tasks[0]
	assert.NotNil(t, task.Meta)
	assert.Contains(t, task.Meta.Order, "tags")
	assert.NotNil(t, task.ParameterMeta)
}

func TestParseMetaSectionRejectsIdentifier(t *testing.T) {
	reg := NewRegistry()
	file := reg.Intern("t.wdl", `version 1.0

task greet {
  command {
    echo hi
  }
  meta {
    author: some_identifier
  }
}
`)
	_, err := ParseDocument(file)
	assert.NotNil(t, err)
	assert.Equal(t, SyntaxError, err.Kind)
}
