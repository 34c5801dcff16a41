package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/azstat/report-cli/internal/compare"
	"github.com/azstat/report-cli/internal/form"
	"github.com/azstat/report-cli/internal/model"
	"github.com/azstat/report-cli/internal/normalize"
	"github.com/azstat/report-cli/internal/store"
	"github.com/azstat/report-cli/internal/validate"
)

var (
	validateCompare     bool
	validateCompareWith int64
	validateOutput      string
	validateNoSave      bool
	validateConcurrency int
)

type validateResult struct {
	File       string                  `json:"file"`
	ID         int64                   `json:"id,omitempty"`
	Report     *model.Report           `json:"report"`
	Validation model.ValidationResult  `json:"validation"`
	Comparison *model.ComparisonResult `json:"comparison,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <file.html> [file.html...]",
	Short: "Validate saved report pages and store the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if validateCompareWith != 0 && len(args) > 1 {
			return eris.New("--compare-with accepts a single input file")
		}
		if validateOutput != "text" && validateOutput != "json" {
			return eris.Errorf("unsupported output format: %s", validateOutput)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		normalizer, err := normalize.New()
		if err != nil {
			return err
		}
		engine := validate.New(cfg.Validation)

		results := make([]*validateResult, len(args))
		var failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(validateConcurrency)
		for i, path := range args {
			g.Go(func() error {
				res, err := processFile(gctx, st, normalizer, engine, path)
				if err != nil {
					failed.Add(1)
					zap.L().Error("validate file failed", zap.String("file", path), zap.Error(err))
					return nil
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if validateOutput == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return eris.Wrap(err, "encode results")
			}
		} else {
			for _, res := range results {
				if res == nil {
					continue
				}
				printValidateResult(res)
			}
		}

		if n := failed.Load(); n > 0 {
			return eris.Errorf("%d of %d files failed", n, len(args))
		}
		return nil
	},
}

func processFile(ctx context.Context, st store.Store, normalizer *normalize.Normalizer, engine *validate.Engine, path string) (*validateResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	doc, err := form.Parse(f)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}

	report := normalizer.Normalize(doc)

	var previous *model.Report
	var comparison *model.ComparisonResult
	if validateCompareWith != 0 {
		rec, err := st.Get(ctx, validateCompareWith)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, eris.Wrapf(compare.ErrNotFound, "record %d", validateCompareWith)
		}
		previous = &rec.Report
		comparison = compare.Diff(report, previous)
	} else if validateCompare && report.Organization.Code != "" {
		rec, err := st.GetLatestBefore(ctx, report.Organization.Code, report.Type, report.Period)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			previous = &rec.Report
			comparison = compare.Diff(report, previous)
		}
	}

	result := engine.Validate(report, previous)

	res := &validateResult{
		File:       path,
		Report:     report,
		Validation: result,
		Comparison: comparison,
	}

	if !validateNoSave {
		id, err := st.Save(ctx, report, result)
		if err != nil {
			return nil, err
		}
		res.ID = id
	}

	return res, nil
}

func init() {
	validateCmd.Flags().BoolVar(&validateCompare, "compare", false, "diff against the latest earlier stored report")
	validateCmd.Flags().Int64Var(&validateCompareWith, "compare-with", 0, "stored record ID to diff against")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "text", "output format: text or json")
	validateCmd.Flags().BoolVar(&validateNoSave, "no-save", false, "validate without storing the result")
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 4, "max files processed in parallel")
	rootCmd.AddCommand(validateCmd)
}
