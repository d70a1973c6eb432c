package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dominoes/internal/export"
	"github.com/san-kum/dominoes/internal/geom"
	"github.com/san-kum/dominoes/internal/gui"
	"github.com/san-kum/dominoes/internal/layout"
	"github.com/san-kum/dominoes/internal/metrics"
	"github.com/san-kum/dominoes/internal/render"
	"github.com/san-kum/dominoes/internal/storage"
	"github.com/san-kum/dominoes/internal/stream"
	"github.com/san-kum/dominoes/internal/viz"
	"github.com/spf13/cobra"
)

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := gui.NewWindow(width, height, "dominoes")
	defer w.Close()
	return w.Run(starter(cfg))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(viz.NewRenderer(viz.DefaultWidth, viz.DefaultHeight), starter(cfg))
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if s := final.(viz.Model).Session(); s != nil {
		return s.Close()
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	srv := stream.NewServer(fps)
	s, err := starter(cfg)(srv)
	if err != nil {
		return err
	}
	defer s.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("streaming", "addr", addr, "path", "/ws", "fps", fps)
		errc <- httpServer.ListenAndServe()
	}()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		s.Run(ctx, time.Second/60)
	}()

	var serveErr error
	select {
	case serveErr = <-errc:
		stop()
	case <-ctx.Done():
	}
	<-runDone

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if runTime > 0 {
		cfg.Duration = runTime
	}

	rec := render.NewRecorder()
	s, err := starter(cfg)(rec)
	if err != nil {
		return err
	}
	defer s.Close()

	dt := s.StepDt(cfg.Scene.MaxDt)
	frames := int(math.Round(cfg.Duration / dt))
	stride := max(1, int(math.Round(0.1/dt)))
	hist := metrics.NewHistory(stride, 0)
	s.AddObserver(hist)

	var trail []mgl64.Vec3
	begin := time.Now()
	for i := 0; i < frames; i++ {
		s.OnFrame(dt)
		if i%stride == 0 {
			trail = append(trail, s.World().Position(s.Sphere()))
		}
	}
	elapsed := time.Since(begin)

	fmt.Printf("simulated %s frames (%.1fs, %d dominoes) in %s\n\n",
		humanize.Comma(int64(frames)), cfg.Duration, s.NumDominoes(), elapsed.Round(time.Millisecond))

	results := s.Results()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range slices.Sorted(maps.Keys(results)) {
		fmt.Fprintf(w, "%s\t%.3f\n", name, results[name])
	}
	fmt.Fprintf(w, "draw_errors\t%d\n", s.DrawErrors())
	w.Flush()

	plotHistory(hist)

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Preset:     preset,
			Seed:       cfg.Scene.Seed,
			Dt:         dt,
			Duration:   cfg.Duration,
			Dominoes:   s.NumDominoes(),
			Broadphase: cfg.Physics.Broadphase,
			Metrics:    results,
		}, hist)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved run %s\n", runID)
	}

	if svgPath != "" {
		poses := make([]geom.Pose, 0, s.NumDominoes())
		for _, h := range s.Handles() {
			poses = append(poses, s.World().Pose(h))
		}
		opts := export.SVGOptions{Half: cfg.Layout.HalfExtents(), Colors: s.Batch().Colors(), Trail: trail}
		if err := writeSVG(svgPath, poses, opts); err != nil {
			return err
		}
	}
	return nil
}

func printLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	spec := cfg.Layout
	poses := layout.Generate(spec)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSEGMENT\tX\tY\tZ\tYAW")
	for i, p := range poses {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\t%.3f\t%.1f°\n", i, spec.Segment(i),
			p.Position.X(), p.Position.Y(), p.Position.Z(), mgl64.RadToDeg(p.Rotation.Y()))
	}
	w.Flush()
	fmt.Printf("\n%d dominoes\n", len(poses))

	if svgPath != "" {
		return writeSVG(svgPath, poses, export.SVGOptions{Half: spec.HalfExtents()})
	}
	return nil
}

func writeSVG(path string, poses []geom.Pose, opts export.SVGOptions) error {
	if err := os.WriteFile(path, []byte(export.LayoutToSVG(poses, opts)), 0o644); err != nil {
		return err
	}
	fmt.Printf("svg written to %s\n", path)
	return nil
}

func plotHistory(hist *metrics.History) {
	if hist.Len() < 2 {
		return
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(hist.Toppled,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("toppled dominoes")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(hist.Energy,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("kinetic energy (J)")))
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tDOMINOES\tTOPPLED\tCHAIN TIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%.2fs\n", r.ID, humanize.Time(r.Timestamp), r.Dominoes,
			r.Metrics["toppled"], r.Metrics["chain_time"])
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	hist, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d dominoes, %.1fs, seed %d\n", meta.ID, meta.Dominoes, meta.Duration, meta.Seed)
	plotHistory(hist)
	return nil
}
