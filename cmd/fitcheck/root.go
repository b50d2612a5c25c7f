package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/pkg/fit"
	"github.com/spf13/cobra"
)

var version = "dev"

type globalOptions struct {
	catalogPath string
	output      string
}

type measurementFlags struct {
	bust, waist, hip float64
}

func (m *measurementFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&m.bust, "bust", 0, "Bust in cm")
	cmd.Flags().Float64Var(&m.waist, "waist", 0, "Waist in cm")
	cmd.Flags().Float64Var(&m.hip, "hip", 0, "Hip in cm")
}

func (m *measurementFlags) value() domain.BodyMeasurements {
	return domain.BodyMeasurements{Bust: m.bust, Waist: m.waist, Hip: m.hip}
}

// check mirrors the app, which only predicts once a bust measurement exists.
func (m *measurementFlags) check() error {
	if m.bust == 0 {
		return errors.New("--bust is required")
	}
	return nil
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "fitcheck",
		Short: "fitcheck - predict brand sizes from body measurements",
		Long: `fitcheck ranks the sizes of brand size guides against body measurements.

Each size starts at 100 and loses 30 points per dimension more than 5 cm
over the target (tight) and 20 per dimension more than 5 cm under (loose).`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "YAML size guide catalog (default: built-in)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")

	cmd.AddCommand(newPredictCommand(opts))
	cmd.AddCommand(newRecommendCommand(opts))
	cmd.AddCommand(newGuidesCommand(opts))

	return cmd
}

func (o *globalOptions) predictor() (*fit.Predictor, error) {
	if o.output != "text" && o.output != "json" {
		return nil, fmt.Errorf("unknown output format %q", o.output)
	}
	opts := []fit.Option{fit.WithQuietLogger()}
	if o.catalogPath != "" {
		opts = append(opts, fit.WithCatalogFile(o.catalogPath))
	}
	return fit.New(opts...)
}

func newPredictCommand(opts *globalOptions) *cobra.Command {
	var m measurementFlags
	var brand, category string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Rank the sizes of one brand guide",
		Example: `  fitcheck predict --brand Zara --category tops --bust 92 --waist 72 --hip 100
  fitcheck predict --brand Mango --category dresses --bust 88 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := m.check(); err != nil {
				return err
			}
			p, err := opts.predictor()
			if err != nil {
				return err
			}
			defer p.Close()

			predictions, err := p.PredictForBrand(m.value(), brand, category)
			if err != nil {
				return err
			}
			var best *domain.FitPrediction
			if b, ok := p.BestFitSize(predictions); ok {
				best = &b
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"brand":       brand,
					"category":    category,
					"predictions": predictions,
					"best":        best,
				})
			}
			return writePredictions(cmd.OutOrStdout(), predictions, best)
		},
	}

	m.register(cmd)
	cmd.Flags().StringVar(&brand, "brand", "", "Brand name")
	cmd.Flags().StringVar(&category, "category", "", "Garment category")
	_ = cmd.MarkFlagRequired("brand")

	return cmd
}

func newRecommendCommand(opts *globalOptions) *cobra.Command {
	var m measurementFlags
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show the best size in every catalog guide",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := m.check(); err != nil {
				return err
			}
			p, err := opts.predictor()
			if err != nil {
				return err
			}
			defer p.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			recs, err := p.Recommend(ctx, m.value())
			if err != nil {
				return err
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), recs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BRAND\tCATEGORY\tSIZE\tSCORE\tPERFECT")
			for _, rec := range recs {
				if !rec.Found {
					fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", rec.Brand, rec.Category)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", rec.Brand, rec.Category, rec.Best.Size, rec.Best.FitScore, rec.Best.PerfectFit)
			}
			return w.Flush()
		},
	}

	m.register(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Maximum time to spend scoring")

	return cmd
}

func newGuidesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "guides",
		Short: "List the size guides in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.predictor()
			if err != nil {
				return err
			}
			defer p.Close()

			guides := p.Guides()
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), guides)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BRAND\tCATEGORY\tSIZES")
			for _, g := range guides {
				sizes := make([]string, 0, len(g.Measurements))
				for _, e := range g.Measurements {
					sizes = append(sizes, e.Size)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", g.Brand, g.Category, strings.Join(sizes, ","))
			}
			return w.Flush()
		},
	}
}

func writePredictions(out io.Writer, predictions []domain.FitPrediction, best *domain.FitPrediction) error {
	if len(predictions) == 0 {
		_, err := fmt.Fprintln(out, "No sizes available")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tSCORE\tFIT\tNOTES")
	for _, p := range predictions {
		marker := ""
		if best != nil && p.Size == best.Size {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%d\t%s\t%s\n", p.Size, marker, p.FitScore, fitLabel(p), strings.Join(p.Recommendations, "; "))
	}
	return w.Flush()
}

func fitLabel(p domain.FitPrediction) string {
	switch {
	case p.PerfectFit:
		return "perfect"
	case p.TooSmall && p.TooLarge:
		return "mixed"
	case p.TooSmall:
		return "small"
	case p.TooLarge:
		return "large"
	default:
		return "ok"
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
