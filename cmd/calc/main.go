// cmd/calc/main.go — batch runner for calculus tool requests
//
// Usage:
//   go run ./cmd/calc -in jobs.json -out results.json
//   go run ./cmd/calc -dir jobs/ -out results/ -j 8
//   go run ./cmd/calc -in jobs.json -dump
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"

	"github.com/njchilds90/calculus"
	"github.com/njchilds90/calculus/batch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if err := run(ctx, os.Args[1:], os.Stdout, color); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, color bool) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	in := fs.String("in", "", "Job file (JSON array of tool requests)")
	out := fs.String("out", "", "Result file, or result directory with -dir")
	dir := fs.String("dir", "", "Run every *.json job file in this directory")
	workers := fs.Int("j", batch.DefaultConcurrency, "Concurrent tool calls")
	dump := fs.Bool("dump", false, "Print the decoded expression trees instead of running")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runner := &batch.Runner{
		FS:          osfs.New("/"),
		Concurrency: *workers,
		Logger:      log.Default(),
	}

	switch {
	case *dir != "":
		src, err := filepath.Abs(*dir)
		if err != nil {
			return err
		}
		dst := filepath.Join(src, "results")
		if *out != "" {
			if dst, err = filepath.Abs(*out); err != nil {
				return err
			}
		}
		sum, err := runner.RunDir(ctx, src, dst)
		if err != nil {
			return err
		}
		report(stdout, sum, color)
		return nil

	case *in != "":
		src, err := filepath.Abs(*in)
		if err != nil {
			return err
		}
		if *dump {
			return dumpTrees(runner, src, stdout)
		}
		dst := strings.TrimSuffix(src, ".json") + ".out.json"
		if *out != "" {
			if dst, err = filepath.Abs(*out); err != nil {
				return err
			}
		}
		sum, err := runner.Run(ctx, src, dst)
		if err != nil {
			return err
		}
		report(stdout, sum, color)
		return nil
	}
	fs.Usage()
	return fmt.Errorf("one of -in or -dir is required")
}

func report(w io.Writer, s batch.Summary, color bool) {
	failed := humanize.Comma(int64(s.Failed))
	if color && s.Failed > 0 {
		failed = "\x1b[31m" + failed + "\x1b[0m"
	}
	fmt.Fprintf(w, "%s files, %s jobs, %s failed, %s result nodes\n",
		humanize.Comma(int64(s.Files)), humanize.Comma(int64(s.Jobs)), failed, humanize.Comma(int64(s.Nodes)))
}

// dumpTrees prints the Go value of every "expr" parameter in the job file.
func dumpTrees(r *batch.Runner, path string, w io.Writer) error {
	reqs, err := r.Load(path)
	if err != nil {
		return err
	}
	for i, req := range reqs {
		raw, ok := req.Params["expr"].(map[string]interface{})
		if !ok {
			fmt.Fprintf(w, "#%d %s: no expression\n", i, req.Tool)
			continue
		}
		e, err := calculus.FromJSON(raw)
		if err != nil {
			fmt.Fprintf(w, "#%d %s: %v\n", i, req.Tool, err)
			continue
		}
		fmt.Fprintf(w, "#%d %s: %s\n", i, req.Tool, e)
		pretty.Fprintf(w, "%# v\n", e)
	}
	return nil
}
