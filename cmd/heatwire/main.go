package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/heatwire/internal/config"
	"github.com/san-kum/heatwire/internal/export"
	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/logging"
	"github.com/san-kum/heatwire/internal/metrics"
	"github.com/san-kum/heatwire/internal/scenario"
	"github.com/san-kum/heatwire/internal/sim"
	"github.com/san-kum/heatwire/internal/storage"
	"github.com/san-kum/heatwire/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logDev   bool
	logger   = zap.NewNop()

	// solver flags, applied over preset and config file
	preset        string
	configFile    string
	length        float64
	points        int
	dt            float64
	alpha         float64
	hotEnd        float64
	steps         int
	farEnd        string
	allowUnstable bool
	workers       int

	runName      string
	scenarioFile string
	metricsFile  string
	svgFile      string
	frameRate    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "heatwire",
		Short:         "1d heat conduction along a wire",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logDev)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heatwire", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&logDev, "log-dev", false, "human readable logs")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset)")
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "run every entry of a scenario file (yaml)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this textfile")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the final profile as svg")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step the wire in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSolverFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate (overrides the render section)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.DescribePreset(name))
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd)
	rootCmd.AddCommand(runsCommands()...)
	rootCmd.AddCommand(mediaCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	d := heat.DefaultParams()
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.Float64Var(&length, "length", d.Length, "wire length (m)")
	f.IntVar(&points, "points", d.Points, "grid points")
	f.Float64Var(&dt, "dt", d.Dt, "timestep (s)")
	f.Float64Var(&alpha, "alpha", d.Alpha, "thermal diffusivity (m^2/s)")
	f.Float64Var(&hotEnd, "hot-end", d.HotEnd, "temperature held at x = 0")
	f.IntVar(&steps, "steps", d.Steps, "time steps")
	f.StringVar(&farEnd, "far-end", string(d.FarEnd), "far end condition: frozen or insulated")
	f.BoolVar(&allowUnstable, "allow-unstable", false, "run even when r > 0.5")
	f.IntVar(&workers, "workers", 1, "workers per step (-1 = GOMAXPROCS)")
}

// resolveConfig layers defaults, preset, config file and explicit flags.
// Render flags are only read by commands that define them.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("length") {
		cfg.Length = length
	}
	if f.Changed("points") {
		cfg.Points = points
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("alpha") {
		cfg.Alpha = alpha
	}
	if f.Changed("hot-end") {
		cfg.HotEnd = hotEnd
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("far-end") {
		fe, err := heat.ParseFarEnd(farEnd)
		if err != nil {
			return nil, err
		}
		cfg.FarEnd = string(fe)
	}
	if f.Changed("allow-unstable") {
		cfg.AllowUnstable = allowUnstable
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("width") {
		cfg.Render.Width = renderWidth
	}
	if f.Changed("height") {
		cfg.Render.Height = renderHeight
	}
	if f.Changed("fps") {
		cfg.Render.FPS = frameRate
	}
	if f.Changed("stride") {
		cfg.Render.Stride = renderStride
	}
	if f.Changed("format") {
		cfg.Render.Format = renderFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// the file's log section applies unless the flags were given
	if configFile != "" && !f.Changed("log-level") && !f.Changed("log-dev") {
		l, err := logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		logger = l
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(registry)
	if err != nil {
		return err
	}

	var results []*sim.Result
	if scenarioFile != "" {
		results, err = runScenario(ctx, rec)
	} else {
		results, err = runSingle(ctx, cmd, rec)
	}
	if err != nil {
		return err
	}

	for _, result := range results {
		runID, err := st.Save(result)
		if err != nil {
			return err
		}
		logger.Info("saved run", zap.String("id", runID), zap.String("name", result.Name))
		printResult(runID, result)
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if svgFile != "" && len(results) > 0 {
		last := results[len(results)-1]
		p := last.Params
		lo, hi := last.History.Bounds()
		svg := export.ProfileSVG(heat.Positions(p.Length, p.Points), last.History.Last(), lo, hi, 640, 320, "#d62728")
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
	}
	return nil
}

func runSingle(ctx context.Context, cmd *cobra.Command, rec *metrics.Recorder) ([]*sim.Result, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	p := cfg.Params()

	name := runName
	if name == "" {
		name = preset
	}
	if name == "" {
		name = "wire"
	}

	s := sim.New(p,
		sim.WithLogger(logger),
		sim.WithMetrics(metrics.Defaults(p)...),
		sim.WithObservers(rec.ForRun(name, p.Dx())),
	)
	fmt.Printf("running %s: %s\n", name, p)
	result, err := s.Run(ctx)
	if err != nil {
		if errors.Is(err, heat.ErrNumericInstability) {
			return nil, fmt.Errorf("%w (pass --allow-unstable to run anyway)", err)
		}
		var stepErr *sim.StepError
		if errors.As(err, &stepErr) {
			return nil, fmt.Errorf("run diverged at step %d: %w", stepErr.Step, err)
		}
		return nil, fmt.Errorf("run: %w", err)
	}
	result.Name = name
	return []*sim.Result{result}, nil
}

func runScenario(ctx context.Context, rec *metrics.Recorder) ([]*sim.Result, error) {
	sc, err := scenario.Load(scenarioFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	members, err := sc.Members()
	if err != nil {
		return nil, err
	}

	fmt.Printf("running scenario %s (%d runs)\n", sc.Name, len(members))
	results, err := sim.NewEnsemble(members, sc.Parallel, metrics.Defaults, sim.WithLogger(logger)).
		ObserveWith(func(m sim.Member) []sim.Observer {
			return []sim.Observer{rec.ForRun(m.Name, m.Params.Dx())}
		}).
		Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return results, nil
}

func printResult(runID string, result *sim.Result) {
	fmt.Printf("\nrun id: %s\n", runID)
	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("steps: %d  r = %.4f\n", result.StepsTaken, result.Fourier)
	fmt.Println("metrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	m, err := viz.NewLive(cfg.Params(), cfg.Render.FPS)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
