package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/LdDl/georadius"
	"github.com/LdDl/georadius/internal/config"
	"github.com/LdDl/georadius/internal/logging"
)

type rootOptions struct {
	configPath      string
	logLevel        string
	hubsFile        string
	peripheriesFile string
	region          string
	products        []string
	criterion       string
	segments        int
	format          string
	showMetrics     bool
}

// app is everything commands need after configuration is resolved
type app struct {
	cfg      *config.Config
	log      logging.Logger
	registry *prometheus.Registry
	metrics  *georadius.Metrics
	store    *georadius.FeatureStore
	engine   *georadius.Engine
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "georadius",
		Short:         "Radius selection and aggregation over hub/periphery municipalities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug / info / warn / error")
	flags.StringVar(&opts.hubsFile, "hubs", "", "GeoJSON FeatureCollection with hubs (polos)")
	flags.StringVar(&opts.peripheriesFile, "peripheries", "", "GeoJSON FeatureCollection with peripheries (periferias)")
	flags.StringVar(&opts.region, "region", "", "Region (UF) filter. ALL disables it")
	flags.StringSliceVar(&opts.products, "products", nil, "Products selected upstream (metadata only)")
	flags.StringVar(&opts.criterion, "criterion", "", "Criterion recorded in result metadata: intersecta / contem")
	flags.IntVar(&opts.segments, "segments", 0, "Number of circle segments")
	flags.StringVar(&opts.format, "format", "json", "Output format: json / geojson / wkt")
	flags.BoolVar(&opts.showMetrics, "metrics", false, "Print aggregation metrics to stderr when done")

	root.AddCommand(newAggregateCommand(opts), newReplayCommand(opts))
	return root
}

// setup resolves configuration (file < env < flags), loads features and builds engine
func setup(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.hubsFile != "" {
		cfg.Data.HubsFile = opts.hubsFile
	}
	if opts.peripheriesFile != "" {
		cfg.Data.PeripheriesFile = opts.peripheriesFile
	}
	if opts.region != "" {
		cfg.Data.Region = opts.region
	}
	if len(opts.products) > 0 {
		cfg.Data.Products = opts.products
	}
	if opts.criterion != "" {
		cfg.Selection.Criterion = opts.criterion
	}
	if opts.segments > 0 {
		cfg.Selection.Segments = opts.segments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	criterion, err := georadius.ParseCriterion(cfg.Selection.Criterion)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build logger")
	}
	registry := prometheus.NewRegistry()
	metrics, err := georadius.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	store := georadius.NewFeatureStore(georadius.NewMirror())
	store.SetFilters(georadius.AppliedFilters{
		Regions:  []string{cfg.Data.Region},
		Products: cfg.Data.Products,
	})
	if cfg.Data.HubsFile != "" {
		hubs, err := georadius.LoadFeatureFile(cfg.Data.HubsFile, georadius.KindHub, log)
		if err != nil {
			return nil, err
		}
		store.SetHubs(hubs)
		log.Info("hubs loaded", logging.String("file", cfg.Data.HubsFile), logging.Int("count", len(hubs)))
	}
	if cfg.Data.PeripheriesFile != "" {
		peripheries, err := georadius.LoadFeatureFile(cfg.Data.PeripheriesFile, georadius.KindPeriphery, log)
		if err != nil {
			return nil, err
		}
		store.SetPeripheries(peripheries)
		log.Info("peripheries loaded", logging.String("file", cfg.Data.PeripheriesFile), logging.Int("count", len(peripheries)))
	}

	engine := georadius.NewEngine(store.Mirror(),
		georadius.WithEngineCriterion(criterion),
		georadius.WithEngineLogger(log),
		georadius.WithEngineMetrics(metrics),
	)
	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  metrics,
		store:    store,
		engine:   engine,
	}, nil
}

func newAggregateCommand(opts *rootOptions) *cobra.Command {
	var centerStr string
	var radiusKm float64
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate municipalities inside circle given by center and radius",
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := parseCenter(centerStr)
			if err != nil {
				return err
			}
			if radiusKm <= 0 {
				return errors.Errorf("radius must be positive, got %f", radiusKm)
			}
			a, err := setup(opts)
			if err != nil {
				return err
			}
			kernel := georadius.NewSphericalKernel()
			selection := georadius.RadiusSelection{
				Center:   center,
				RadiusKm: radiusKm,
				Polygon:  kernel.Circle(center, radiusKm, a.cfg.Selection.Segments),
			}
			filters := a.store.AppliedFilters()
			builder := georadius.NewBuilder(georadius.WithBuilderLogger(a.log))
			var result georadius.AggregationResult
			agg, err := a.engine.Aggregate(selection.Polygon, filters)
			if err != nil {
				a.log.Error("aggregation failed", logging.Err(err))
				result = builder.Failed(selection, filters, a.engine.Criterion(), err)
			} else {
				result = builder.Build(agg, selection, filters)
			}
			if err := writeResults(cmd.OutOrStdout(), opts.format, []georadius.AggregationResult{result}); err != nil {
				return err
			}
			if opts.showMetrics {
				return printMetrics(cmd.ErrOrStderr(), a.registry)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&centerStr, "center", "", "Circle center as 'lon,lat'")
	cmd.Flags().Float64Var(&radiusKm, "radius", 0, "Circle radius (kilometers)")
	_ = cmd.MarkFlagRequired("center")
	_ = cmd.MarkFlagRequired("radius")
	return cmd
}

func newReplayCommand(opts *rootOptions) *cobra.Command {
	var traceFile string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded pointer trace through draw controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(traceFile)
			if err != nil {
				return errors.Wrapf(err, "Can't open trace '%s'", traceFile)
			}
			defer f.Close()
			trace, err := georadius.ReadTrace(f)
			if err != nil {
				return err
			}
			a, err := setup(opts)
			if err != nil {
				return err
			}
			surface := georadius.NewHeadlessSurface(trace.Viewport)
			ctrl := georadius.NewDrawController(surface, a.engine,
				georadius.WithSegments(a.cfg.Selection.Segments),
				georadius.WithFilters(a.store.AppliedFilters),
				georadius.WithBuilder(georadius.NewBuilder(georadius.WithBuilderLogger(a.log))),
				georadius.WithControllerLogger(a.log),
				georadius.WithControllerMetrics(a.metrics),
			)
			a.log.Debug("replaying", logging.Int("events", len(trace.Events)), logging.String("controller", ctrl.String()))
			results, err := georadius.Replay(trace, ctrl, a.store)
			if err != nil {
				return err
			}
			if err := writeResults(cmd.OutOrStdout(), opts.format, results); err != nil {
				return err
			}
			if opts.showMetrics {
				return printMetrics(cmd.ErrOrStderr(), a.registry)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&traceFile, "trace", "", "JSON trace file")
	_ = cmd.MarkFlagRequired("trace")
	return cmd
}

func parseCenter(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, errors.Errorf("center must be 'lon,lat', got '%s'", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, errors.Wrap(err, "Can't parse longitude")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, errors.Wrap(err, "Can't parse latitude")
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return orb.Point{}, errors.Errorf("center (%f, %f) is out of range", lon, lat)
	}
	return orb.Point{lon, lat}, nil
}

func writeResults(w io.Writer, format string, results []georadius.AggregationResult) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, result := range results {
			if err := enc.Encode(result); err != nil {
				return errors.Wrap(err, "Can't encode result")
			}
		}
	case "geojson":
		for _, result := range results {
			b, err := georadius.ResultToFeatureCollection(result).MarshalJSON()
			if err != nil {
				return errors.Wrap(err, "Can't encode result as GeoJSON")
			}
			fmt.Fprintln(w, string(b))
		}
	case "wkt":
		for _, result := range results {
			fmt.Fprintf(w, "%s;%s;%f\n", result.Metadata.SelectionID, georadius.PrepareWKTPoint(result.Metadata.Center), result.Subtotals.Total)
			if result.Export != nil {
				fmt.Fprintln(w, georadius.PrepareWKTPolygon(result.Export.Circle))
			}
		}
	default:
		return errors.Errorf("unknown format '%s'", format)
	}
	return nil
}

// printMetrics writes gathered metrics in Prometheus text exposition format
func printMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "Can't gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "Can't write metrics")
		}
	}
	return nil
}
