// Package batch runs files of tool requests concurrently.
//
// A job file is a JSON array of tool.Request values. The matching output
// file holds one Result per request, in input order.
package batch

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/calculus/tool"
)

// DefaultConcurrency is used when Runner.Concurrency is not positive.
const DefaultConcurrency = 4

type Result struct {
	ID       string        `json:"id"`
	Tool     string        `json:"tool"`
	Response tool.Response `json:"response"`
}

// Summary counts what a run did. Nodes is the total size of every returned
// expression tree.
type Summary struct {
	Files  int
	Jobs   int
	Failed int
	Nodes  int
}

func (s *Summary) add(o Summary) {
	s.Files += o.Files
	s.Jobs += o.Jobs
	s.Failed += o.Failed
	s.Nodes += o.Nodes
}

// Runner executes job files found on FS. A nil Logger disables logging.
type Runner struct {
	FS          billy.Filesystem
	Concurrency int
	Logger      *log.Logger
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

func (r *Runner) concurrency() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return DefaultConcurrency
}

// Load reads and decodes the job file at path.
func (r *Runner) Load(path string) ([]tool.Request, error) {
	data, err := util.ReadFile(r.FS, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var reqs []tool.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return reqs, nil
}

// Execute handles reqs with at most Concurrency calls in flight. Tool
// failures are recorded in the results; only cancellation of ctx is
// returned as an error.
func (r *Runner) Execute(ctx context.Context, reqs []tool.Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency())
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Result{ID: uuid.NewString(), Tool: req.Tool, Response: tool.Handle(req)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "batch interrupted")
	}
	return results, nil
}

// Run executes the job file in and writes its results to out, creating
// out's directory when needed.
func (r *Runner) Run(ctx context.Context, in, out string) (Summary, error) {
	reqs, err := r.Load(in)
	if err != nil {
		return Summary{}, err
	}
	results, err := r.Execute(ctx, reqs)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "run %s", in)
	}

	sum := Summary{Files: 1, Jobs: len(results)}
	for _, res := range results {
		if res.Response.Failed() {
			sum.Failed++
		}
		sum.Nodes += res.Response.Nodes
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return Summary{}, errors.Wrapf(err, "encode results for %s", in)
	}
	if dir := filepath.Dir(out); dir != "." && dir != "/" {
		if err := r.FS.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := util.WriteFile(r.FS, out, data, 0o644); err != nil {
		return Summary{}, errors.Wrapf(err, "write %s", out)
	}
	r.logf("batch: %s: %d jobs, %d failed", in, sum.Jobs, sum.Failed)
	return sum, nil
}

// RunDir runs every *.json file directly inside dir, writing each result
// file under outDir with the same base name. Files are processed in name
// order and the first failure stops the run.
func (r *Runner) RunDir(ctx context.Context, dir, outDir string) (Summary, error) {
	infos, err := r.FS.ReadDir(dir)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "list %s", dir)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".json") {
			continue
		}
		names = append(names, fi.Name())
	}
	sort.Strings(names)

	var total Summary
	for _, name := range names {
		sum, err := r.Run(ctx, r.FS.Join(dir, name), r.FS.Join(outDir, name))
		if err != nil {
			return total, err
		}
		total.add(sum)
	}
	return total, nil
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}
