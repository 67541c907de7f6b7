package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
	"github.com/reoring/objectschema/metrics"
	"github.com/reoring/objectschema/schemafile"
	"github.com/reoring/objectschema/validators/uniqueness"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Validate a YAML or JSON document",
		Long: `Validate reads a document from file, or stdin when file is "-" or
missing, and prints the report. Files ending in .json are decoded as strict
JSON; everything else is read as YAML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.validate(cmd.Context(), path)
		},
	}
	f := cmd.Flags()
	f.Bool("strict", false, "report values whose type does not match the declared scalar type")
	f.Int("concurrency", 0, "maximum validators running at once (0 = unlimited, 1 = sequential)")
	f.Int("max-depth", 0, "maximum nesting depth (0 = unlimited)")
	f.String("lang", "", "message language: en or ja")
	f.StringP("format", "o", "json", "output format: json or text")
	f.Bool("metrics", false, "write Prometheus metrics of the run to stderr")
	f.String("redis-addr", "", "Redis address backing the uniqueness validator")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database")
	f.String("redis-prefix", "", "key prefix for uniqueness sets")
	return cmd
}

func (a *app) validate(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg
	s, err := a.loadSchema()
	if err != nil {
		return err
	}
	data, err := a.readData(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if cfg.Lang != "" {
		i18n.SetLanguage(cfg.Lang)
	}

	if cfg.Redis.Addr != "" {
		var opts []uniqueness.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, uniqueness.WithPrefix(cfg.Redis.Prefix))
		}
		store := uniqueness.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		defer store.Close()
		ctx = objectschema.WithService[uniqueness.Store](ctx, store)
	}

	opt := objectschema.ValidateOpt{
		Concurrency: cfg.Concurrency,
		MaxDepth:    cfg.MaxDepth,
		StrictTypes: cfg.Strict,
		Logger:      a.log,
	}
	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
		obs, err := metrics.New(reg)
		if err != nil {
			return err
		}
		opt.Observer = obs
	}

	rep, err := objectschema.Validate(ctx, s, data, opt)
	if err != nil {
		return err
	}
	a.log.Info("validated", zap.String("schema", s.Name()), zap.String("input", path), zap.Int("messages", rep.Count()))

	if err := a.printReport(rep); err != nil {
		return err
	}
	if reg != nil {
		if err := writeMetrics(a.stderr, reg); err != nil {
			return err
		}
	}
	if !rep.Valid() {
		return errInvalid
	}
	return nil
}

func (a *app) readData(path string) (any, error) {
	var r io.Reader = a.stdin
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer fh.Close()
		r = fh
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return objectschema.DecodeJSON(r, objectschema.DecodeOpt{RejectDuplicateKeys: true})
	}
	return schemafile.DecodeData(r)
}

func (a *app) printReport(rep objectschema.Report) error {
	if a.cfg.Format == "text" {
		issues := rep.Issues()
		if len(issues) == 0 {
			_, err := fmt.Fprintln(a.stdout, "valid")
			return err
		}
		for _, is := range issues {
			if _, err := fmt.Fprintf(a.stdout, "%s: %s\n", is.Path, is.Message); err != nil {
				return err
			}
		}
		return nil
	}
	b, err := rep.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(b))
	return err
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
