// Raw Photo Editor - phase ordered photo filter pipeline with live preview

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"raw-photo-editor/internal/filters"
	"raw-photo-editor/internal/gui"
	imgio "raw-photo-editor/internal/io"
	"raw-photo-editor/internal/pipeline"
	"raw-photo-editor/internal/preset"
	"raw-photo-editor/internal/settings"
)

const (
	AppName    = "Raw Photo Editor"
	AppID      = "com.rawphotoeditor.app"
	AppVersion = "1.0.0"
)

var (
	debugMode    bool
	settingsPath string
	presetPath   string
)

func main() {
	root := &cobra.Command{
		Use:     "app",
		Short:   AppName,
		Version: AppVersion,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runGUI,
	}
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose logging")
	root.PersistentFlags().StringVar(&settingsPath, "settings", settings.DefaultPath(), "Settings file")

	guiCmd := &cobra.Command{
		Use:   "gui [file]",
		Short: "Open the editor window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}

	applyCmd := &cobra.Command{
		Use:   "apply --preset preset.yaml <in> <out>",
		Short: "Render a photo with a preset at full resolution",
		Args:  cobra.ExactArgs(2),
		RunE:  runApply,
	}
	applyCmd.Flags().StringVar(&presetPath, "preset", "", "Preset file to apply")
	_ = applyCmd.MarkFlagRequired("preset")

	filtersCmd := &cobra.Command{
		Use:   "filters",
		Short: "List the registered filters in pipeline order",
		Args:  cobra.NoArgs,
		RunE:  runFilters,
	}

	root.AddCommand(guiCmd, applyCmd, filtersCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup builds the processing core shared by every command. A registry
// that fails to initialize is fatal.
func setup() (*logrus.Logger, *settings.Settings, *pipeline.Processor, *imgio.ImageLoader) {
	logger := initLogger(debugMode)

	cfg, err := settings.LoadOrDefault(settingsPath)
	if err != nil {
		logger.WithError(err).Warn("Falling back to default settings")
		cfg = settings.Default()
	}

	if err := filters.Default.Init(logger); err != nil {
		logger.WithError(err).Fatal("Filter registry initialization failed")
	}

	loader := imgio.NewImageLoader(logger, cfg.JPEGQuality)
	processor := pipeline.NewProcessor(pipeline.FromRegistry(filters.Default, logger), loader, cfg, logger)
	return logger, cfg, processor, loader
}

func runGUI(cmd *cobra.Command, args []string) error {
	logger, cfg, processor, loader := setup()
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": debugMode,
	}).Info("Starting Raw Photo Editor")

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, logger, filters.Default, processor, loader, cfg)
	if len(args) == 1 {
		mainApp.OpenPath(args[0])
	}
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	logger, _, processor, loader := setup()
	defer processor.Close()

	in, out := args[0], args[1]
	if !imgio.IsSupported(out) {
		return fmt.Errorf("unsupported output format %q", out)
	}

	p, err := preset.Load(presetPath)
	if err != nil {
		return err
	}
	if err := p.Apply(filters.Default); err != nil {
		return err
	}
	if err := processor.Open(in); err != nil {
		return err
	}

	req := pipeline.UpdateRequest{
		Phase:    filters.PhaseRGB,
		SubPhase: pipeline.AllFilters,
		Mode:     pipeline.ModeFinal,
	}
	stats, err := processor.Update(context.Background(), req)
	if err != nil {
		return err
	}
	if err := loader.Save(processor.Result(), processor.WorkSpace(), out); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"input":    in,
		"output":   out,
		"ran":      strings.Join(stats.Ran, ","),
		"duration": stats.Duration,
	}).Info("Photo rendered")
	return nil
}

func runFilters(cmd *cobra.Command, _ []string) error {
	_, _, processor, _ := setup()
	defer processor.Close()

	w := cmd.OutOrStdout()
	for _, f := range processor.Pipeline().Filters() {
		items := lo.Map(f.Config().Items(), func(item filters.ConfigItem, _ int) string {
			return fmt.Sprintf("%s(%s)", item.ID, item.Kind)
		})
		fmt.Fprintf(w, "%-12s %-10s %-9s %s\n", f.ID(), f.Phase(), f.ColorSpace(), strings.Join(items, " "))
	}
	return nil
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
