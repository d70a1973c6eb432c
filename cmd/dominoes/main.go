package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/dominoes/internal/config"
	"github.com/san-kum/dominoes/internal/metrics"
	"github.com/san-kum/dominoes/internal/render"
	"github.com/san-kum/dominoes/internal/scene"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	arcCount   int
	straight   int
	seed       uint64
	assetDir   string
	logLevel   = logLevelFlag{value: slog.LevelInfo}
	logFile    string
	dataDir    string

	// run
	runTime float64
	svgPath string
	save    bool

	// gui
	width  int32
	height int32

	// serve
	addr string
	fps  float64
)

// main wires the subcommands. With no subcommand the scene opens in a window.
func main() {
	rootCmd := &cobra.Command{
		Use:           "dominoes",
		Short:         "a domino chain knocked over by a sphere",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel.value, logFile, cmd.Name() == "live")
		},
		RunE: runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset configuration")
	pf.IntVar(&arcCount, "arc", layoutDefault, "dominoes on the arc")
	pf.IntVar(&straight, "straight", layoutDefault, "dominoes per straight row")
	pf.Uint64Var(&seed, "seed", config.DefaultSeed, "colour seed")
	pf.StringVar(&assetDir, "assets", "", "asset directory")
	pf.Var(&logLevel, "log-level", "log level: debug, info, warn or error")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.StringVar(&dataDir, "data", ".dominoes", "directory for saved runs")

	rootCmd.Flags().Int32Var(&width, "width", 1280, "window width")
	rootCmd.Flags().Int32Var(&height, "height", 720, "window height")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the scene headless and report metrics",
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&runTime, "time", 0, "simulated seconds (default from config)")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final layout as svg")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run report to the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the scene in the terminal",
		RunE:  runLive,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the scene to websocket clients",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().Float64Var(&fps, "fps", 30, "frames per second sent to clients")

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "print the initial domino poses",
		RunE:  printLayout,
	}
	layoutCmd.Flags().StringVar(&svgPath, "svg", "", "also write the layout as svg")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("available presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  - %s\n", p)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, liveCmd, serveCmd, layoutCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// layoutDefault marks the --arc and --straight flags as unset.
const layoutDefault = -1

// loadConfig applies, in order: the preset, the config file, then any
// command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if errors.Is(err, config.ErrUnknownPreset) {
		return nil, fmt.Errorf("%w (see 'dominoes presets')", err)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if arcCount != layoutDefault {
		cfg.Layout.ArcCount = arcCount
	}
	if straight != layoutDefault {
		cfg.Layout.StraightCount = straight
	}
	if flags.Changed("seed") {
		cfg.Scene.Seed = seed
	}
	if assetDir != "" {
		cfg.Scene.AssetDir = assetDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// starter returns the function every front end uses to build its session,
// with the standard metrics attached.
func starter(cfg *config.Config) func(render.Renderer) (*scene.Session, error) {
	return func(r render.Renderer) (*scene.Session, error) {
		s, err := scene.Start(cfg, r)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Standard() {
			s.AddMetric(m)
		}
		return s, nil
	}
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := "dominoes.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("config written to %s\n", path)
	return nil
}
