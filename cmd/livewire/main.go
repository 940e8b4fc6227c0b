package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"livewire/internal/logging"
	"livewire/pkg/config"
	"livewire/pkg/features"
	"livewire/pkg/imageio"
	"livewire/pkg/tracing"
	"livewire/pkg/visualization"
)

// errUsage is returned when neither -jobs nor -image is given
var errUsage = errors.New("one of -jobs or -image is required")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	// Parse command line arguments
	fs := flag.NewFlagSet("livewire", flag.ContinueOnError)
	configPath := fs.String("config", "livewire.yaml", "Configuration file (defaults are used if it does not exist)")
	initConfig := fs.Bool("init-config", false, "Write the default configuration to -config and exit")
	jobsPath := fs.String("jobs", "", "YAML file listing tracing jobs")
	imagePath := fs.String("image", "", "Single image to trace (alternative to -jobs)")
	anchors := fs.String("anchors", "", "Anchors for -image as \"x,y;x,y;...\"")
	closePath := fs.Bool("close", false, "Close the boundary traced on -image")
	output := fs.String("output", "results.yaml", "Output YAML file for the traced paths")
	overlay := fs.String("overlay", "", "PNG file showing the path traced on -image")
	featuresDir := fs.String("extract-features", "", "Directory to save the feature grids of -image")
	numCores := fs.Int("cores", 0, "Number of jobs processed in parallel (default: from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			return fmt.Errorf("failed to write configuration: %w", err)
		}
		fmt.Fprintf(stdout, "Default configuration written to: %s\n", *configPath)
		return nil
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.FromConfig(cfg.Output.LogLevel, cfg.Output.LogFormat)

	// Collect jobs
	var jobs []tracing.Job
	switch {
	case *jobsPath != "":
		jobs, err = tracing.LoadJobs(*jobsPath)
		if err != nil {
			return fmt.Errorf("failed to load jobs: %w", err)
		}
	case *imagePath != "":
		pts, err := tracing.ParseAnchors(*anchors)
		if err != nil {
			return fmt.Errorf("invalid -anchors: %w", err)
		}
		jobs = []tracing.Job{{Name: "image", Image: *imagePath, Anchors: pts, Close: *closePath}}
	default:
		fs.Usage()
		return errUsage
	}

	tracer := tracing.NewTracer(tracing.Params{
		Scissors:                cfg.ScissorsOptions(),
		Session:                 cfg.SessionOptions(),
		NumCores:                cfg.Processing.NumCores,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
	}, logger)

	fmt.Fprintf(stdout, "Tracing %d job(s) on %d core(s)...\n", len(jobs), cfg.Processing.NumCores)
	startTime := time.Now()
	results, err := tracer.RunBatch(ctx, jobs)
	if err != nil {
		return fmt.Errorf("tracing failed: %w", err)
	}
	processingTime := time.Since(startTime)

	if err := tracing.WriteResults(*output, results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	fmt.Fprintf(stdout, "\nTracing completed in %.2f seconds!\n", processingTime.Seconds())
	fmt.Fprintf(stdout, "Results saved to: %s\n\n", *output)
	for _, res := range results {
		fmt.Fprintf(stdout, "%s: %d points, %d control points, closed=%t\n",
			res.Name, res.Path.Len(), len(res.Path.ControlPoints), res.Closed)
		fmt.Fprintf(stdout, "  cost %.3f, mean gradient %.3f, on edges %.1f%%, trained segments %d\n",
			res.Cost, res.Metrics.MeanGradient, res.Metrics.EdgeFraction*100, res.TrainedSegments)
	}

	if *imagePath == "" || (*overlay == "" && *featuresDir == "") {
		return nil
	}

	img, err := imageio.Load(*imagePath)
	if err != nil {
		return fmt.Errorf("failed to reload image: %w", err)
	}

	if *overlay != "" {
		if err := visualization.SavePNG(visualization.PathOverlay(img.RGBA(), results[0].Path), *overlay); err != nil {
			log.Printf("Warning: Failed to save overlay: %v", err)
		} else {
			fmt.Fprintf(stdout, "Overlay saved to: %s\n", *overlay)
		}
	}

	if *featuresDir != "" {
		set, err := features.Extract(img.Pix, img.Width, img.Height, cfg.Training.EdgeWidth)
		if err != nil {
			return fmt.Errorf("feature extraction failed: %w", err)
		}
		if err := visualization.NewViewer(set).SaveFeatureSet(*featuresDir); err != nil {
			log.Printf("Warning: Failed to save feature grids: %v", err)
		} else {
			fmt.Fprintf(stdout, "Feature grids saved to: %s\n", *featuresDir)
		}
	}
	return nil
}
