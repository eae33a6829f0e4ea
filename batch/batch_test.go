package batch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/njchilds90/calculus/batch"
	"github.com/njchilds90/calculus/tool"
)

const jobs = `[
  {"tool": "diff", "params": {"expr": {"type": "pow", "left": {"type": "var", "name": "x"}, "right": {"type": "num", "value": "2"}}, "var": "x", "simplify": true}},
  {"tool": "simplify", "params": {"expr": {"type": "div", "left": {"type": "var", "name": "x"}, "right": {"type": "num", "value": "0"}}}},
  {"tool": "evaluate", "params": {"expr": {"type": "var", "name": "q"}}},
  {"tool": "string", "params": {"expr": {"type": "call", "name": "sin", "args": [{"type": "var", "name": "x"}]}}}
]`

func readResults(t *testing.T, r *batch.Runner, path string) []batch.Result {
	t.Helper()
	data, err := util.ReadFile(r.FS, path)
	if err != nil {
		t.Fatal(err)
	}
	var out []batch.Result
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRun(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "jobs/a.json", []byte(jobs), 0o644); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	r := &batch.Runner{FS: fs, Concurrency: 2, Logger: log.New(&logs, "", 0)}

	sum, err := r.Run(context.Background(), "jobs/a.json", "out/a.json")
	if err != nil {
		t.Fatal(err)
	}
	want := batch.Summary{Files: 1, Jobs: 4, Failed: 1, Nodes: 5}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	results := readResults(t, r, "out/a.json")
	gotTools := make([]string, len(results))
	for i, res := range results {
		gotTools[i] = res.Tool
		if _, err := uuid.Parse(res.ID); err != nil {
			t.Errorf("result %d: bad id %q", i, res.ID)
		}
	}
	if diff := cmp.Diff([]string{"diff", "simplify", "evaluate", "string"}, gotTools); diff != "" {
		t.Errorf("results out of order (-want +got):\n%s", diff)
	}
	if results[0].Response.String != "(2 * x)" {
		t.Errorf("diff result: %+v", results[0].Response)
	}
	if results[1].Response.ErrorKind != "DivisionByZero" {
		t.Errorf("simplify result: %+v", results[1].Response)
	}
	if results[2].Response.Failed() || len(results[2].Response.Diagnostics) != 1 {
		t.Errorf("evaluate result: %+v", results[2].Response)
	}
	if !strings.Contains(logs.String(), "jobs/a.json: 4 jobs, 1 failed") {
		t.Errorf("unexpected log output: %q", logs.String())
	}
}

func TestRunDir(t *testing.T) {
	fs := memfs.New()
	for name, body := range map[string]string{
		"in/b.json":    jobs,
		"in/a.json":    `[{"tool": "tool_spec"}]`,
		"in/notes.txt": "ignored",
	} {
		if err := util.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	r := &batch.Runner{FS: fs}
	sum, err := r.RunDir(context.Background(), "in", "out")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Files != 2 || sum.Jobs != 5 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if got := readResults(t, r, "out/a.json"); len(got) != 1 || got[0].Tool != "tool_spec" {
		t.Errorf("out/a.json: %+v", got)
	}
	if _, err := fs.Stat("out/notes.txt"); err == nil {
		t.Error("non-json files must be skipped")
	}
}

func TestRun_Errors(t *testing.T) {
	fs := memfs.New()
	r := &batch.Runner{FS: fs}

	_, err := r.Run(context.Background(), "missing.json", "out.json")
	if !batch.IsNotExist(err) {
		t.Errorf("want not-exist error, got %v", err)
	}

	if err := util.WriteFile(fs, "bad.json", []byte(`{"tool":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background(), "bad.json", "out.json"); err == nil || !strings.Contains(err.Error(), "decode bad.json") {
		t.Errorf("want decode error, got %v", err)
	}
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &batch.Runner{FS: memfs.New(), Concurrency: 1}
	if _, err := r.Execute(ctx, []tool.Request{{Tool: "tool_spec"}}); err == nil {
		t.Error("cancelled context should stop the batch")
	}
}

func TestExecute_ManyJobs(t *testing.T) {
	reqs := make([]tool.Request, 100)
	for i := range reqs {
		reqs[i] = tool.Request{Tool: "free_symbols", Params: map[string]interface{}{
			"expr": map[string]interface{}{"type": "var", "name": "v"},
		}}
	}
	r := &batch.Runner{FS: memfs.New(), Concurrency: 8}
	results, err := r.Execute(context.Background(), reqs)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, res := range results {
		if res.Response.Failed() || seen[res.ID] {
			t.Fatalf("bad result %+v", res)
		}
		seen[res.ID] = true
	}
}
