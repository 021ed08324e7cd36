package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/nautiq/swmesh"
	"github.com/nautiq/swmesh/blobstore"
)

type loadSummary struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Vertices  int               `json:"vertices"`
	Triangles int               `json:"triangles"`
	Elapsed   string            `json:"elapsed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func loadCmd() *cli.Command {
	var (
		concurrency int
		readLimit   int
		jsonOut     bool
		verbose     bool
	)

	return &cli.Command{
		Name:      "load",
		Usage:     "Bulk-decode mesh files from a directory or file list",
		ArgsUsage: "<dir | file...>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "concurrency", Aliases: []string{"c"}, Usage: "max concurrent loads", Value: swmesh.DefaultMaxConcurrent, Destination: &concurrency},
			&cli.IntFlag{Name: "read-limit", Usage: "read throttle in bytes/sec (0 = unlimited)", Destination: &readLimit},
			&cli.BoolFlag{Name: "json", Usage: "emit a JSON summary", Destination: &jsonOut},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every file at debug level", Destination: &verbose},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return cli.Exit("no inputs: pass a directory or one or more mesh files", 2)
			}

			root, names, err := collectInputs(args)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			if len(names) == 0 {
				return cli.Exit("no mesh files found", 2)
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := swmesh.NewTextLogger(level)

			loader, err := swmesh.NewLoader(
				blobstore.NewLocalStore(root),
				swmesh.WithMaxConcurrent(concurrency),
				swmesh.WithReadLimit(readLimit),
				swmesh.WithLogger(logger),
			)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			defer loader.Close()

			start := time.Now()
			results, err := loader.LoadAll(ctx, names)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			elapsed := time.Since(start)

			summary := summarize(results, elapsed)
			if jsonOut {
				out, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			} else {
				printSummary(results, summary)
			}

			if summary.Failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d meshes failed", summary.Failed, summary.Total), 1)
			}
			return nil
		},
	}
}

// collectInputs resolves CLI arguments to a store root plus blob names. A
// single directory argument is walked recursively; otherwise every argument
// is taken as a file path relative to the current directory.
func collectInputs(args []string) (root string, names []string, err error) {
	if len(args) == 1 {
		fi, statErr := os.Stat(args[0])
		if statErr != nil {
			return "", nil, statErr
		}
		if fi.IsDir() {
			root = args[0]
			err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
				if walkErr != nil {
					return walkErr
				}
				if d.Type().IsRegular() {
					rel, relErr := filepath.Rel(root, p)
					if relErr != nil {
						return relErr
					}
					names = append(names, rel)
				}
				return nil
			})
			if err != nil {
				return "", nil, err
			}
			sort.Strings(names)
			return root, names, nil
		}
	}
	return "", args, nil
}

func summarize(results map[string]swmesh.Result, elapsed time.Duration) loadSummary {
	s := loadSummary{
		Total:   len(results),
		Elapsed: elapsed.String(),
	}
	for name, r := range results {
		if r.Err != nil {
			s.Failed++
			if s.Errors == nil {
				s.Errors = make(map[string]string)
			}
			s.Errors[name] = r.Err.Error()
			continue
		}
		s.Succeeded++
		s.Vertices += r.Mesh.VertexCount()
		s.Triangles += r.Mesh.TriangleCount()
	}
	return s
}

func printSummary(results map[string]swmesh.Result, s loadSummary) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := results[name]
		if r.Err != nil {
			fmt.Printf("FAIL %-40s %v\n", name, r.Err)
		} else {
			fmt.Printf("ok   %-40s %6d vertices %6d triangles %3d submeshes\n",
				name, r.Mesh.VertexCount(), r.Mesh.TriangleCount(), len(r.Mesh.SubMeshes()))
		}
	}
	fmt.Printf("\n%d loaded, %d failed, %d vertices, %d triangles in %s\n",
		s.Succeeded, s.Failed, s.Vertices, s.Triangles, s.Elapsed)
}
