// Command focusframe turns a raw screen recording and its companion
// cursor/click event log into a polished screencast: smoothed cursor
// motion, automatic zoom/pan focus, click ripples, and motion blur.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/focusframe/focusframe/internal/capture"
	"github.com/focusframe/focusframe/internal/config"
	"github.com/focusframe/focusframe/internal/logging"
	"github.com/focusframe/focusframe/internal/pipeline"
	"github.com/focusframe/focusframe/internal/pipelineerr"
	"github.com/focusframe/focusframe/internal/progress"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "focusframe",
	Short: "FocusFrame screencast processor",
	Long:  `FocusFrame turns a raw screen recording into a polished screencast with automatic zoom, smoothed cursor motion, click ripples, and motion blur.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("focusframe %s\n", version)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available capture targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList()
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a display to video alongside a cursor/click event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		display, _ := cmd.Flags().GetInt("display")
		outDir, _ := cmd.Flags().GetString("output")
		fps, _ := cmd.Flags().GetInt("fps")
		return runRecord(display, outDir, fps)
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Render a screencast from a recorded video and its event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		events, _ := cmd.Flags().GetString("events")
		output, _ := cmd.Flags().GetString("output")
		return runProcess(cmd, input, events, output)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose logging")

	recordCmd.Flags().Int("display", 0, "display index to capture")
	recordCmd.Flags().String("output", ".", "output directory for recording.mp4 and its event log")
	recordCmd.Flags().Int("fps", 30, "capture frame rate")

	processCmd.Flags().String("input", "", "source video path")
	processCmd.Flags().String("events", "", "event log path")
	processCmd.Flags().String("output", "", "rendered output video path")
	processCmd.Flags().String("background", "", "canvas background: #rrggbb or an image path")
	processCmd.Flags().Float64("trim-start", 0, "seconds to trim from the start")
	processCmd.Flags().Float64("trim-end", 0, "seconds to trim from the end")
	processCmd.Flags().Float64("cursor-scale", 1.5, "cursor sprite scale multiplier")
	processCmd.Flags().Float64("cursor-timeout", 2.0, "seconds of inactivity before the cursor fades out")
	processCmd.Flags().Bool("no-cursor", false, "disable cursor rendering")
	processCmd.Flags().Bool("no-motion-blur", false, "disable motion blur")
	processCmd.Flags().Bool("no-click-highlight", false, "disable click ripples")
	processCmd.Flags().Int("workers", 0, "render worker count, 0 = number of CPUs")
	processCmd.MarkFlagRequired("input")
	processCmd.MarkFlagRequired("events")
	processCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(versionCmd, listCmd, recordCmd, processCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if code := pipelineerr.Code(err); code != "" {
			fmt.Fprintf(os.Stderr, "focusframe: %s: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "focusframe: %v\n", err)
		}
		os.Exit(1)
	}
}

func runList() error {
	displays, err := capture.ListDisplays()
	if err != nil {
		return &pipelineerr.IOError{Err: err}
	}
	for _, d := range displays {
		fmt.Printf("%d: %dx%d\n", d.Index, d.Width, d.Height)
	}
	return nil
}

// runRecord starts a capture session and stops it cleanly on SIGINT or
// SIGTERM, mirroring the teacher's signal-driven stop-vs-exit handling.
func runRecord(display int, outDir string, fps int) error {
	logger, err := logging.New(verbose)
	if err != nil {
		return &pipelineerr.Internal{Err: err}
	}
	defer logger.Sync()

	session := capture.NewSession(logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := session.Start(ctx, display, outDir, fps); err != nil {
		return &pipelineerr.IOError{Err: err}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Println("Recording... press Ctrl+C to stop.")
	<-sigChan
	signal.Stop(sigChan)

	fmt.Println("Stopping recording...")
	videoPath, eventLogPath, err := session.Stop()
	if err != nil {
		return &pipelineerr.IOError{Err: err}
	}
	fmt.Printf("Saved %s and %s\n", videoPath, eventLogPath)
	return nil
}

// applyProcessFlags overrides cfg fields whose flags were explicitly
// set on the command line, leaving file/env-derived values alone
// otherwise. Flags use dashes where mapstructure keys use underscores,
// so this reads them directly rather than relying on viper's key
// normalization to bridge the two.
func applyProcessFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("background") {
		cfg.Background, _ = f.GetString("background")
	}
	if f.Changed("trim-start") {
		cfg.TrimStart, _ = f.GetFloat64("trim-start")
	}
	if f.Changed("trim-end") {
		cfg.TrimEnd, _ = f.GetFloat64("trim-end")
	}
	if f.Changed("cursor-scale") {
		cfg.CursorScale, _ = f.GetFloat64("cursor-scale")
	}
	if f.Changed("cursor-timeout") {
		cfg.CursorTimeout, _ = f.GetFloat64("cursor-timeout")
	}
	if f.Changed("no-cursor") {
		cfg.NoCursor, _ = f.GetBool("no-cursor")
	}
	if f.Changed("no-motion-blur") {
		cfg.NoMotionBlur, _ = f.GetBool("no-motion-blur")
	}
	if f.Changed("no-click-highlight") {
		cfg.NoClickHighlight, _ = f.GetBool("no-click-highlight")
	}
	if f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
}

func runProcess(cmd *cobra.Command, input, events, output string) error {
	logger, err := logging.New(verbose)
	if err != nil {
		return &pipelineerr.Internal{Err: err}
	}
	defer logger.Sync()

	cfg, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return err
	}
	applyProcessFlags(cmd, cfg)

	p, err := pipeline.New(input, events, cfg, logger)
	if err != nil {
		return err
	}

	bar := progress.NewBar(os.Stdout, "rendering")
	frames, err := p.Run(context.Background(), bar)
	if err != nil {
		return err
	}

	if err := pipeline.Encode(output, frames); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", output)
	return nil
}
