// Command wdlcheck parses a WDL document, type-checks it and its imports,
// and evaluates a task's command section against a JSON input file,
// printing the materialized command as plain text. It does not execute the
// command or run any call -- spawning processes and orchestrating
// containers is left to an external executor, per this module's scope.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/log"
	wdl "github.com/grailbio/wdltools"
)

var (
	taskFlag   = flag.String("task", "", "Name of the task whose command to materialize. If empty, only parses and type-checks.")
	inputsFlag = flag.String("inputs", "", "Path to a JSON file of task inputs, keyed by declaration name.")
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: wdlcheck [-task name] [-inputs inputs.json] <document.wdl>")
		os.Exit(2)
	}
	if err := run(flag.Arg(0)); err != nil {
		log.Error.Printf("%v", err)
		os.Exit(1)
	}
}

func run(uri string) error {
	ctx := context.Background()
	reader := wdl.FileSourceReader{}
	registry := wdl.NewRegistry()

	td, err := wdl.LoadAndCheck(ctx, reader, registry, uri)
	if err != nil {
		return err
	}
	for _, e := range td.Errors {
		log.Error.Printf("%v", e)
	}
	if td.Errors.HasFatal() {
		return td.Errors
	}
	if len(td.Errors) > 0 {
		return fmt.Errorf("%d type error(s) found, aborting", len(td.Errors))
	}

	if *taskFlag == "" {
		log.Printf("%s: OK (%d task(s), workflow=%v)", uri, len(td.Tasks), td.Workflow != nil)
		return nil
	}

	task := findTask(td.Doc, *taskFlag)
	if task == nil {
		return fmt.Errorf("no such task %q", *taskFlag)
	}

	inputs, err := loadInputs(*inputsFlag)
	if err != nil {
		return err
	}

	rt := &wdl.Runtime{Reader: reader, Writer: reader, WorkDir: "."}
	cmd, _, cerr := wdl.EvaluateTaskCommand(ctx, rt, td, task, inputs)
	if cerr != nil {
		return cerr
	}
	fmt.Println(cmd)
	return nil
}

func findTask(doc *wdl.Document, name string) *wdl.TaskDecl {
	for _, t := range doc.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func loadInputs(path string) (map[string]wdl.Value, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	values := make(map[string]wdl.Value, len(raw))
	for name, msg := range raw {
		v, verr := wdl.JSONToValue(msg, wdl.Span{})
		if verr != nil {
			return nil, verr
		}
		values[name] = v
	}
	return values, nil
}
