package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/semgraph/pkg/encode"
	"github.com/liliang-cn/semgraph/pkg/persist"
	"github.com/liliang-cn/semgraph/pkg/query"
	"github.com/liliang-cn/semgraph/pkg/semgraph"
	"github.com/liliang-cn/semgraph/pkg/store"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "semgraph",
	Short: "CLI tool for the semgraph triple store",
	Long:  `A command-line interface for loading, querying and exporting semantic triples.`,
}

var loadCmd = &cobra.Command{
	Use:   "load <file.nt>",
	Short: "Load an N-Triples file into a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()

		triples, err := encode.DecodeNTriples(f)
		if err != nil {
			return fmt.Errorf("failed to parse input: %w", err)
		}

		g := store.New()
		ctx := context.Background()
		snap, err := persist.Open(dbPath)
		if err != nil {
			return err
		}
		defer snap.Close()

		if err := snap.Load(ctx, g); err != nil {
			return fmt.Errorf("failed to load existing snapshot: %w", err)
		}
		before := g.Len()
		for _, t := range triples {
			g.Add(t)
		}
		if err := snap.Save(ctx, g); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		fmt.Printf("Loaded %d statements (%d new) into %s\n", len(triples), g.Len()-before, dbPath)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <query text>",
	Short: "Run a SELECT or CONSTRUCT query against a snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(text)), "CONSTRUCT") {
			res, err := s.Construct(text)
			if err != nil {
				return err
			}
			if err := encode.Encode(os.Stdout, res.Triples, encode.FormatNTriples); err != nil {
				return err
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "%d triples (provenance %s)\n", len(res.Triples), res.Provenance)
			}
			return nil
		}

		res, err := s.Select(text)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Bindings)
		}
		printBindings(res.Bindings)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a snapshot to an RDF text format",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("format")
		format, err := encode.ParseFormat(name)
		if err != nil {
			return err
		}

		g, err := loadGraph()
		if err != nil {
			return err
		}
		return encode.Encode(os.Stdout, g.Triples(), format)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		snap, err := persist.Open(dbPath)
		if err != nil {
			return err
		}
		defer snap.Close()

		n, err := snap.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Snapshot: %s\nTriples:  %d\n", dbPath, n)
		return nil
	},
}

func openStore() (*semgraph.Store, error) {
	cfg := semgraph.DefaultConfig()
	opts := []semgraph.Option{}
	if verbose {
		opts = append(opts, semgraph.WithLogger(semgraph.NewLogger(os.Stderr, semgraph.LevelDebug)))
	}
	s, err := semgraph.Open(cfg, opts...)
	if err != nil {
		return nil, err
	}

	g, err := loadGraph()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Merge(g)
	return s, nil
}

func loadGraph() (*store.Graph, error) {
	snap, err := persist.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	g := store.New()
	if err := snap.Load(context.Background(), g); err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return g, nil
}

func printBindings(bindings []query.Binding) {
	if len(bindings) == 0 {
		fmt.Println("no results")
		return
	}

	// Stable column order across rows.
	seen := map[string]bool{}
	var cols []string
	for _, b := range bindings {
		for k := range b {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)

	for _, c := range cols {
		fmt.Printf("?%s\t", c)
	}
	fmt.Println()
	for _, b := range bindings {
		for _, c := range cols {
			fmt.Printf("%s\t", b[c])
		}
		fmt.Println()
	}
	fmt.Printf("%d rows\n", len(bindings))
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "triples.db", "Snapshot file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	queryCmd.Flags().Bool("json", false, "Output bindings as JSON")
	exportCmd.Flags().String("format", "ntriples", "Output format (ntriples/turtle/jsonld)")

	rootCmd.AddCommand(
		loadCmd,
		queryCmd,
		exportCmd,
		statsCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
