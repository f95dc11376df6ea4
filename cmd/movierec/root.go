package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"movierec-service/internal/config"
	"movierec-service/internal/fileio"
	"movierec-service/internal/recommend/model"
	recSvc "movierec-service/internal/recommend/service"
)

type cliOptions struct {
	catalog   string
	genreSep  string
	maxRows   int
	threshold int
	asJSON    bool
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	defaults := defaultOptions()

	root := &cobra.Command{
		Use:          "movierec",
		Short:        "Content-based movie recommendations from a catalog file",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.catalog, "catalog", "c", defaults.catalog, "catalog file (csv, xls, xlsx)")
	pf.StringVar(&opts.genreSep, "genre-sep", defaults.genreSep, "genre delimiter in the catalog")
	pf.IntVar(&opts.maxRows, "max-rows", defaults.maxRows, "use only the first N rows (0 = all)")
	pf.IntVar(&opts.threshold, "threshold", defaults.threshold, "minimum title match score (1-100)")
	pf.BoolVar(&opts.asJSON, "json", false, "print JSON instead of plain text")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log build progress to stderr")

	root.AddCommand(newTitleCmd(opts), newGenreCmd(opts), newGenresCmd(opts))
	return root
}

// значения по умолчанию берутся из той же конфигурации, что и у сервера (env, config.yaml)
func defaultOptions() cliOptions {
	d := recSvc.DefaultConfig()
	o := cliOptions{genreSep: d.GenreSep, maxRows: d.MaxRows, threshold: d.TitleThreshold}
	if cfg, err := config.Load(); err == nil {
		o.catalog = cfg.Catalog.Path
		o.genreSep = cfg.Catalog.GenreSep
		o.maxRows = cfg.Catalog.MaxRows
		o.threshold = cfg.Recommend.TitleThreshold
	}
	return o
}

func newTitleCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "title <movie title>",
		Short: "Recommend movies similar to the given title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.RecommendByTitle(joinArgs(args))
			if err != nil {
				return describe(err)
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Movies similar to %s (match %d):\n", res.ResolvedTitle, res.MatchScore)
			for i, r := range res.Results {
				fmt.Fprintf(out, "%2d. %s  %.3f\n", i+1, r.Title, *r.Score)
			}
			return nil
		},
	}
}

func newGenreCmd(opts *cliOptions) *cobra.Command {
	var exact bool
	cmd := &cobra.Command{
		Use:   "genre <genre>",
		Short: "List movies of a genre in catalog order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			var res model.GenreResult
			if exact {
				res, err = svc.RecommendByGenreExact(joinArgs(args))
			} else {
				res, err = svc.RecommendByGenre(joinArgs(args))
			}
			if err != nil {
				return describe(err)
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s movies:\n", res.GenreLabel)
			for i, r := range res.Results {
				fmt.Fprintf(out, "%2d. %s\n", i+1, r.Title)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exact, "exact", false, "match a genre from `movierec genres` exactly")
	return cmd
}

func newGenresCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genres present in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			genres, err := svc.ListGenres()
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), genres)
			}
			for _, g := range genres {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func (o *cliOptions) load(ctx context.Context) (*recSvc.Service, error) {
	if o.catalog == "" {
		return nil, errors.New("catalog file is required (--catalog or CATALOG_PATH)")
	}
	logger := zerolog.Nop()
	if o.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	m := model.DefaultMapping()
	rows, err := fileio.ReadFile(o.catalog, m.HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cfg := recSvc.DefaultConfig()
	cfg.GenreSep = o.genreSep
	cfg.MaxRows = o.maxRows
	cfg.TitleThreshold = o.threshold
	svc := recSvc.New(cfg, logger)
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := svc.Build(ctx, fileio.ToRecords(rows, m)); err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return svc, nil
}

func describe(err error) error {
	var nf *recSvc.NotFoundError
	if errors.As(err, &nf) && len(nf.Suggestions) > 0 {
		return fmt.Errorf("%w; did you mean: %v", err, nf.Suggestions)
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func joinArgs(args []string) string {
	s := args[0]
	for _, a := range args[1:] {
		s += " " + a
	}
	return s
}
