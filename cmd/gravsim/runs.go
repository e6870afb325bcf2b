package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	svgOut    string
	svgExtent float64
)

func runCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the kinetic energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and energy trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render the final positions of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().StringVarP(&svgOut, "output", "o", "snapshot.svg", "output file")
	snapshotCmd.Flags().Float64Var(&svgExtent, "extent", 0, "radius to fit (0 for automatic)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the kinetic energy",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	return []*cobra.Command{listCmd, plotCmd, exportCmd, snapshotCmd, analyzeCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBODIES\tFORCE\tINTEG\tSTEPS\tDT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Force,
			run.Integrator,
			run.Steps,
			run.StepSize,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, kinetic, err := st.LoadEnergy(args[0])
	if err != nil {
		return err
	}
	if len(kinetic) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bodies: %d  force: %s  integrator: %s\n", meta.Bodies, meta.Force, meta.Integrator)
	fmt.Printf("samples: %d\n\n", len(kinetic))
	fmt.Println(asciigraph.Plot(kinetic,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	))
	return nil
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	positions, err := storage.New(dataDir).LoadPositions(args[0])
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return fmt.Errorf("no positions stored for %s", args[0])
	}

	opts := export.DefaultSVGOptions()
	opts.Extent = svgExtent
	if opts.Extent <= 0 {
		for _, p := range positions {
			opts.Extent = max(opts.Extent, math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z))
		}
	}

	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	if err := export.PositionsSVG(f, positions, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %d bodies to %s\n", len(positions), svgOut)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, kinetic, err := st.LoadEnergy(args[0])
	if err != nil {
		return err
	}

	freqs, amps := analysis.Spectrum(kinetic, meta.StepSize)
	if len(amps) < 2 {
		return fmt.Errorf("not enough samples for a spectrum")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Println(hr(40))
	fmt.Println(asciigraph.Plot(amps[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("kinetic energy spectrum, 0 to %.3g", freqs[len(freqs)-1])),
	))
	fmt.Println()

	f, ok := analysis.DominantFrequency(kinetic, meta.StepSize)
	if !ok {
		fmt.Println("no dominant frequency (flat trace)")
		return nil
	}
	fmt.Printf("dominant frequency: %.4g per unit time\n", f)
	fmt.Printf("period: %.4g\n", 1/f)
	return nil
}
