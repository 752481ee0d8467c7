package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/heatwire/internal/analysis"
	"github.com/san-kum/heatwire/internal/export"
	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/storage"
	"github.com/san-kum/heatwire/internal/viz"
)

var (
	plotStep    int
	probeIndex  int
	braille     bool
	fitFrom     int
	fraction    float64
	jsonOutput  bool
	outFile     string
	replayTheme string
)

func runsCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored profile in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotStep, "step", -1, "snapshot to plot (-1 = last)")
	plotCmd.Flags().IntVar(&probeIndex, "probe", -1, "also plot this grid index over time")
	plotCmd.Flags().BoolVar(&braille, "braille", false, "draw on a braille canvas")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the plot as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "steady state, decay rate and spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&fitFrom, "fit-from", 0, "skip this many snapshots before fitting the decay (0 = a tenth of the run)")
	analyzeCmd.Flags().Float64Var(&fraction, "fraction", 0.01, "penetration threshold as a fraction of the hot end")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the summary as json")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "play a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate")
	replayCmd.Flags().StringVar(&replayTheme, "theme", "", fmt.Sprintf("colour theme %v", viz.ThemeNames()))

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	return []*cobra.Command{listCmd, plotCmd, analyzeCmd, replayCmd, exportJSONCmd, exportCSVCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPOINTS\tDT\tR\tSTEPS\tFAR END")
	for _, run := range runs {
		stable := ""
		if !run.Stable {
			stable = " !"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4gs\t%.4f%s\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.Points,
			run.Params.Dt,
			run.Fourier,
			stable,
			run.Steps,
			run.Params.FarEnd,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	history := result.History
	if history.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	k := plotStep
	if k < 0 {
		k = history.Len() - 1
	}
	if k >= history.Len() {
		return fmt.Errorf("step %d out of range [0, %d)", k, history.Len())
	}
	f := history.At(k)
	lo, hi := history.Bounds()

	p := result.Params
	fmt.Printf("run: %s (%s)\n", args[0], result.Name)
	fmt.Printf("snapshots: %d\n\n", history.Len())

	caption := fmt.Sprintf("T(x) at t = %.2f s", float64(k)*p.Dt)
	var canvas *viz.Canvas
	if braille {
		canvas = viz.NewCanvas(80, 24)
		canvas.DrawProfile(f, lo, hi)
		fmt.Println(canvas.String())
		fmt.Println(caption)
	} else {
		fmt.Println(viz.PlotProfile(f, lo, hi, caption, 80, 12))
	}
	fmt.Println()
	fmt.Println(viz.HeatStrip(f, lo, hi, 80))

	if probeIndex >= 0 {
		if probeIndex >= p.Points {
			return fmt.Errorf("probe index %d out of range [0, %d)", probeIndex, p.Points)
		}
		fmt.Println()
		fmt.Println(viz.PlotProbe(history, probeIndex, 80, 10))
	}

	if svgFile != "" {
		var svg string
		if canvas != nil {
			svg = export.CanvasToSVG(canvas, 4, "#d62728")
		} else {
			svg = export.ProfileSVG(heat.Positions(p.Length, p.Points), f, lo, hi, 640, 320, "#1f77b4")
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgFile)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	if result.History.Len() == 0 {
		return fmt.Errorf("no data")
	}

	from := fitFrom
	if from <= 0 {
		from = result.History.Len() / 10
	}
	summary := analysis.Summarize(result.Params, result.History, from, fraction)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("analysis: %s\n", args[0])
	fmt.Printf("params: %s\n\n", result.Params)
	fmt.Printf("residual to steady state: %.6g\n", summary.Residual)
	fmt.Printf("penetration depth (%.0f%%): %.4f m\n", fraction*100, summary.PenetrationDepth)
	fmt.Printf("decay rate: %.6g 1/s (theory %.6g 1/s)\n", summary.DecayRate, summary.TheoreticalDecayRate)
	if summary.DecayRate > 0 {
		fmt.Printf("time constant: %.3f s\n", 1/summary.DecayRate)
	}
	fmt.Printf("dominant mode: %d\n\n", summary.DominantMode)

	if len(summary.Spectrum) > 1 {
		graph := asciigraph.Plot(summary.Spectrum,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum of T - T_steady"),
		)
		fmt.Println(graph)
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	if result.History.Len() == 0 {
		return fmt.Errorf("no data to replay")
	}
	if replayTheme != "" {
		viz.SetTheme(replayTheme)
	}

	m := viz.NewReplay(result.Params, result.History, frameRate)
	_, err = tea.NewProgram(m).Run()
	return err
}

func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := export.WriteJSON(w, export.NewDocument(result)); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	history, times, err := storage.New(dataDir).LoadHistory(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := export.WriteCSV(w, history, times); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}
