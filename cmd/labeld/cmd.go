package main

import (
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/judwhite/go-svc"
	"github.com/spf13/cobra"

	"github.com/labelpoint/labeld/internal/config"
	"github.com/labelpoint/labeld/internal/daemon"
	"github.com/labelpoint/labeld/internal/dialect"
	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/render"
	"github.com/labelpoint/labeld/internal/vision"
)

// NewCommand builds the labeld command tree.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labeld",
		Short: "labeld is a label printer daemon and compiler",
	}

	cmd.AddCommand(
		NewRunCommand(),
		NewCompileCommand(),
		NewPreviewCommand(),
		NewCalibrateCommand(),
		NewVersionCommand(),
	)

	return cmd
}

// NewVersionCommand prints the build identification.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build info",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s %s (%s)\n", config.ServiceName, config.BuildDate, config.BuildTime, config.BuildEnvironment)
		},
	}
}

// NewRunCommand starts the daemon, as a host service or in the foreground.
func NewRunCommand() *cobra.Command {
	var consoleMode bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the print daemon",
		RunE: func(_ *cobra.Command, _ []string) error {
			prg := &daemon.Program{}

			if consoleMode || isInteractive() {
				return runConsole(prg)
			}
			return svc.Run(prg, syscall.SIGINT, syscall.SIGTERM)
		},
	}

	cmd.Flags().BoolVar(&consoleMode, "console", false, "Run in console mode (not as service)")
	return cmd
}

// NewCompileCommand compiles one label to the printer command stream.
func NewCompileCommand() *cobra.Command {
	var templatePath, profilePath, recordPath, outPath string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a template+record to printer commands",
		RunE: func(_ *cobra.Command, _ []string) error {
			tpl, profile, rec, err := loadJob(templatePath, profilePath, recordPath)
			if err != nil {
				return err
			}
			data, err := dialect.Compile(tpl, profile, rec)
			if err != nil {
				return err
			}
			return writeOutput(outPath, data)
		},
	}

	addJobFlags(cmd, &templatePath, &profilePath, &recordPath)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// NewPreviewCommand renders one label to a PNG file.
func NewPreviewCommand() *cobra.Command {
	var templatePath, profilePath, recordPath, outPath string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a template+record to a PNG preview",
		RunE: func(_ *cobra.Command, _ []string) error {
			tpl, profile, rec, err := loadJob(templatePath, profilePath, recordPath)
			if err != nil {
				return err
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			return render.WritePNG(f, tpl, profile, rec)
		},
	}

	addJobFlags(cmd, &templatePath, &profilePath, &recordPath)
	cmd.Flags().StringVarP(&outPath, "out", "o", "preview.png", "Output PNG file")
	return cmd
}

// NewCalibrateCommand emits the calibration sheet or analyzes a captured
// frame of one.
func NewCalibrateCommand() *cobra.Command {
	var profilePath, framePath, detectorName string
	var emitPattern bool

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Print-offset calibration: emit the test sheet or analyze a camera frame",
		RunE: func(_ *cobra.Command, _ []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}

			if emitPattern {
				data, err := dialect.CalibrationPattern(profile)
				if err != nil {
					return err
				}
				return writeOutput("", data)
			}

			if framePath == "" {
				return fmt.Errorf("either --pattern or --frame is required")
			}
			f, err := os.Open(framePath)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			frame, err := png.Decode(f)
			if err != nil {
				return fmt.Errorf("decode %s: %w", framePath, err)
			}

			detector, err := pickDetector(detectorName)
			if err != nil {
				return err
			}
			result, err := vision.NewEngine(detector).Calibrate(frame, profile)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "profile.json", "Printer profile JSON file")
	cmd.Flags().StringVarP(&framePath, "frame", "f", "", "Captured frame PNG of the printed sheet")
	cmd.Flags().StringVar(&detectorName, "detector", "opencv", "Mark detector: opencv or scan")
	cmd.Flags().BoolVar(&emitPattern, "pattern", false, "Emit the calibration sheet command stream to stdout")
	return cmd
}

func pickDetector(name string) (vision.Detector, error) {
	switch name {
	case "opencv":
		return vision.NewCVDetector(), nil
	case "scan":
		return vision.NewScanDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector %q (use opencv or scan)", name)
	}
}

func addJobFlags(cmd *cobra.Command, templatePath, profilePath, recordPath *string) {
	cmd.Flags().StringVarP(templatePath, "template", "t", "template.json", "Label template JSON file")
	cmd.Flags().StringVarP(profilePath, "profile", "p", "profile.json", "Printer profile JSON file")
	cmd.Flags().StringVarP(recordPath, "record", "r", "record.json", "Data record JSON file")
}

func loadJob(templatePath, profilePath, recordPath string) (*label.Template, *label.PrinterProfile, label.DataRecord, error) {
	var tpl label.Template
	if err := readJSON(templatePath, &tpl); err != nil {
		return nil, nil, nil, err
	}
	profile, err := loadProfile(profilePath)
	if err != nil {
		return nil, nil, nil, err
	}
	rec := label.DataRecord{}
	if recordPath != "" {
		if err := readJSON(recordPath, &rec); err != nil {
			return nil, nil, nil, err
		}
	}
	return &tpl, profile, rec, nil
}

func loadProfile(path string) (*label.PrinterProfile, error) {
	var profile label.PrinterProfile
	if err := readJSON(path, &profile); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// runConsole runs the program in the foreground
func runConsole(prg *daemon.Program) error {
	if err := prg.Init(nil); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	if err := prg.Start(); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	log.Println("═══════════════════════════════════════════════════════")
	log.Println("  🏷️ LABELD - Console mode")
	log.Println("  Press Ctrl+C to stop...")
	log.Println("═══════════════════════════════════════════════════════")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("\n🛑 Shutting down...")
	return prg.Stop()
}

// isInteractive checks if running from a terminal (not as service)
func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
