// Command codelens indexes a repository's structural elements, builds a
// call/import/inheritance graph and a BM25 lexical index over it, and
// serves both over a line-delimited Snapshot RPC or the command line.
// Grounded on cmd/lci entry point and flag layout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/codelens-dev/codelens/internal/repo"
	"github.com/codelens-dev/codelens/internal/rpc"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "codelens",
		Usage:   "Structural code index and graph query engine",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Repository root to index",
				Value:   ".",
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			statsCommand(),
			searchCommand(),
			queryCommand(),
			watchCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildRepo(c *cli.Context) (*repo.Repo, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, err
	}
	r := repo.New()
	if _, err := r.Build(context.Background(), root); err != nil {
		return nil, err
	}
	return r, nil
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Walk the repository, build the graph and BM25 index, and persist the elements and BM25 index under .codelens/",
		Action: func(c *cli.Context) error {
			r, err := buildRepo(c)
			if err != nil {
				return err
			}
			h, _ := r.Handle()
			dir := filepath.Join(h.Config.Project.Root, ".codelens")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			if err := h.SaveArtifacts(dir); err != nil {
				return err
			}
			stats := h.Graph.Stats()
			fmt.Printf("indexed %d files, %d elements, %d edges\n", stats.FileCount, stats.ElementCount, stats.EdgeCount)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print graph statistics as JSON",
		Action: func(c *cli.Context) error {
			r, err := buildRepo(c)
			if err != nil {
				return err
			}
			h, _ := r.Handle()
			return printJSON(h.Graph.Stats())
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "BM25 lexical search over the index",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("search requires a query argument")
			}
			r, err := buildRepo(c)
			if err != nil {
				return err
			}
			h, _ := r.Handle()
			results := h.BM25.Search(c.Args().First(), c.Int("limit"))
			return printJSON(results)
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run a graph query: callers|callees|deps|dependents|subclasses|superclasses|related|source",
		ArgsUsage: "<query> <symbol>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "filter hint passed through to the query (currently informational)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("query requires <query> <symbol>")
			}
			r, err := buildRepo(c)
			if err != nil {
				return err
			}
			h, _ := r.Handle()
			symbol := c.Args().Get(1)
			switch c.Args().First() {
			case "callers":
				return printJSON(h.Graph.FindCallers(symbol))
			case "callees":
				return printJSON(h.Graph.FindCallees(symbol))
			case "deps":
				return printJSON(h.Graph.GetDependencies(symbol))
			case "dependents":
				return printJSON(h.Graph.GetDependents(symbol))
			case "subclasses":
				return printJSON(h.Graph.GetSubclasses(symbol))
			case "superclasses":
				return printJSON(h.Graph.GetSuperclasses(symbol))
			case "related":
				return printJSON(h.Graph.GetRelated(symbol, 2))
			case "source":
				src, ok := h.Graph.GetSource(symbol)
				if !ok {
					return fmt.Errorf("unknown element id %q", symbol)
				}
				fmt.Println(src)
				return nil
			default:
				return fmt.Errorf("unknown query %q", c.Args().First())
			}
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Index the repository, then watch for changes and update incrementally",
		Action: func(c *cli.Context) error {
			r, err := buildRepo(c)
			if err != nil {
				return err
			}
			if err := r.StartWatching(); err != nil {
				return err
			}
			defer r.StopWatching()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			fmt.Println("watching for changes, press Ctrl-C to stop")
			<-sig
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Index the repository and serve the Snapshot RPC over loopback TCP",
		Action: func(c *cli.Context) error {
			r, err := buildRepo(c)
			if err != nil {
				return err
			}
			if err := r.StartWatching(); err != nil {
				slog.Warn("watch start failed", "err", err)
			}
			defer r.StopWatching()

			srv, err := rpc.New(r, slog.Default())
			if err != nil {
				return err
			}
			port, err := srv.Start()
			if err != nil {
				return err
			}
			fmt.Printf("snapshot rpc listening on 127.0.0.1:%d token=%s\n", port, srv.Token())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return srv.Stop()
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
