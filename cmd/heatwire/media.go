package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/heatwire/internal/analysis"
	"github.com/san-kum/heatwire/internal/config"
	"github.com/san-kum/heatwire/internal/metrics"
	"github.com/san-kum/heatwire/internal/render"
	"github.com/san-kum/heatwire/internal/scenario"
	"github.com/san-kum/heatwire/internal/server"
	"github.com/san-kum/heatwire/internal/sim"
	"github.com/san-kum/heatwire/internal/storage"
)

var (
	renderFormat string
	renderOut    string
	renderWidth  int
	renderHeight int
	renderStride int

	sweepParam    string
	sweepMin      float64
	sweepMax      float64
	sweepCount    int
	sweepParallel int

	serveAddr string
)

func mediaCommands() []*cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a stored run to gif, mjpeg or png frames",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	rf := renderCmd.Flags()
	rf.StringVar(&preset, "preset", "", "take render settings from a preset")
	rf.StringVar(&configFile, "config", "", "take render settings from a config file (yaml)")
	rf.StringVar(&renderFormat, "format", config.DefaultFormat, "gif, mjpeg or png")
	rf.StringVarP(&renderOut, "out", "o", "", "output file, or directory for png (default <run_id>.<ext>)")
	rf.IntVar(&renderWidth, "width", config.DefaultWidth, "frame width (>= 300)")
	rf.IntVar(&renderHeight, "height", config.DefaultHeight, "frame height (>= 300)")
	rf.IntVar(&frameRate, "fps", config.DefaultFPS, "frames per second (1-100)")
	rf.IntVar(&renderStride, "stride", 1, "render every n-th snapshot; gif keeps all frames in memory until written")

	stabilityCmd := &cobra.Command{
		Use:   "stability",
		Short: "check the Fourier number of a configuration",
		Args:  cobra.NoArgs,
		RunE:  checkStability,
	}
	addSolverFlags(stabilityCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one parameter across a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", fmt.Sprintf("parameter to sweep %v", scenario.SweepParams()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.005, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.02, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 7, "number of values")
	sweepCmd.Flags().IntVar(&sweepParallel, "parallel", 0, "concurrent runs (0 = unbounded)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve stored runs over http",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&renderWidth, "width", config.DefaultWidth, "frame width")
	serveCmd.Flags().IntVar(&renderHeight, "height", config.DefaultHeight, "frame height")

	return []*cobra.Command{renderCmd, stabilityCmd, sweepCmd, serveCmd}
}

func renderRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	runID := args[0]
	result, err := storage.New(dataDir).LoadResult(runID)
	if err != nil {
		return err
	}

	out := renderOut
	if out == "" {
		out = defaultRenderOut(runID, cfg.Render.Format)
	}
	n, err := renderResult(ctx, result, cfg.Render, out)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d frames to %s\n", n, out)
	return nil
}

func defaultRenderOut(runID, format string) string {
	switch format {
	case "mjpeg":
		return runID + ".avi"
	case "png":
		return filepath.Join(dataDir, runID, "frames")
	default:
		return runID + ".gif"
	}
}

// gifWarnBytes is the frame buffer size above which render suggests a stride.
const gifWarnBytes = 256 << 20

// renderResult encodes the stored history with validated render settings.
func renderResult(ctx context.Context, result *sim.Result, rc config.RenderConfig, out string) (int, error) {
	r := render.New(result.Params, result.History, rc.Width, rc.Height)
	log := logger.With(zap.String("run", result.Name), zap.String("format", rc.Format))
	frames := len(render.FrameIndices(result.History.Len(), rc.Stride))

	var (
		enc render.Encoder
		err error
	)
	switch rc.Format {
	case "gif":
		if size := render.GIFBufferSize(frames, r.Width, r.Height); size > gifWarnBytes {
			log.Warn("gif frames are buffered in memory; raise --stride to reduce it",
				zap.Int("frames", frames), zap.Int64("bytes", size))
		}
		enc = render.NewGIF(out, rc.FPS)
	case "mjpeg":
		enc, err = render.NewMJPEG(out, r.Width, r.Height, rc.FPS)
	case "png":
		enc, err = render.NewPNGSequence(out)
	default:
		return 0, fmt.Errorf("unknown format %q (want gif, mjpeg or png)", rc.Format)
	}
	if err != nil {
		return 0, err
	}

	log.Info("rendering", zap.Int("snapshots", result.History.Len()), zap.Int("stride", rc.Stride))
	n, err := render.Export(ctx, result.History, r, enc, rc.Stride)
	if err != nil {
		return n, fmt.Errorf("render: %w", err)
	}
	log.Info("rendered", zap.Int("frames", n), zap.String("out", out))
	return n, nil
}

func checkStability(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.Params()

	fmt.Printf("dx = %.6g m\n", p.Dx())
	fmt.Printf("r  = alpha*dt/dx^2 = %.6g\n", p.Fourier())
	fmt.Printf("largest stable dt = %.6g s\n", p.MaxStableDt())
	if rate := analysis.TheoreticalDecayRate(p); !math.IsNaN(rate) {
		fmt.Printf("slowest mode decay rate = %.6g 1/s\n", rate)
	}
	if err := p.CheckStability(); err != nil {
		fmt.Println("UNSTABLE")
		return err
	}
	fmt.Println("stable")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sw := &scenario.Sweep{
		Base:     cfg.Params(),
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		Count:    sweepCount,
		Parallel: sweepParallel,
	}
	results, err := sw.Run(ctx, metrics.Defaults)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tR\tSTABLE\tSTEPS\tMAX T\tOVERSHOOT\tSTATUS\n", sweepParam)
	for _, sr := range results {
		status := "ok"
		switch {
		case sr.Diverged:
			status = "diverged"
		case sr.Err != nil:
			status = sr.Err.Error()
		}
		fmt.Fprintf(w, "%.6g\t%.4f\t%t\t%d\t%.4g\t%.4g\t%s\n",
			sr.Value, sr.Fourier, sr.Stable, sr.Steps, sr.FinalMax, sr.Overshoot, status)
	}
	return w.Flush()
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	srv := server.New(st, nil,
		server.WithLogger(logger),
		server.WithFrameSize(renderWidth, renderHeight),
	)
	return srv.ListenAndServe(ctx, serveAddr)
}
