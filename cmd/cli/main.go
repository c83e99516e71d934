// Batch enhancement command line tool
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"photo-enhancer/internal/backend"
	"photo-enhancer/internal/config"
	"photo-enhancer/internal/core"
	"photo-enhancer/internal/enhance"
	imageio "photo-enhancer/internal/io"
	"photo-enhancer/internal/metrics"
	"photo-enhancer/internal/segment"
)

func main() {
	inputPath := flag.String("input", "", "Path to the image to enhance")
	outputPath := flag.String("output", "", "Destination path, defaults to enhanced_<operation>.png")
	operation := flag.String("operation", "", "Enhancement operation, see -list")
	strength := flag.Int("strength", core.DefaultStrength, "Enhancement strength 1-10")
	listOps := flag.Bool("list", false, "List supported operations")
	report := flag.Bool("report", false, "Print a quality report after enhancing")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)

	if *listOps {
		for _, op := range core.AllOperations() {
			fmt.Println(op.String())
		}
		return
	}

	if *inputPath == "" || *operation == "" {
		flag.Usage()
		os.Exit(2)
	}

	op, err := core.ParseOperation(*operation)
	if err != nil {
		logger.WithError(err).Fatal("unknown operation")
	}

	v, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		logger.WithError(err).Fatal("failed to parse configuration")
	}

	registry := backend.NewRegistry(backendOptions(cfg), logger)
	defer registry.Close()

	remover := segment.NewU2Net(segmentOptions(cfg), logger)
	defer remover.Close()

	service := enhance.NewEnhancer(registry, remover, logger)
	loader := imageio.NewImageLoader(logger)

	img, err := loader.LoadImage(*inputPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load image")
	}
	defer img.Close()

	result, outcome := service.Enhance(img, op, *strength)
	defer result.Close()

	dest := *outputPath
	if dest == "" {
		dest = imageio.OutputFilename(op)
	}

	if err := loader.SaveImage(result, dest); err != nil {
		logger.WithError(err).Fatal("failed to save image")
	}

	logger.WithFields(logrus.Fields{
		"operation": outcome.Op.String(),
		"strength":  outcome.Strength,
		"applied":   outcome.Applied,
		"fallback":  outcome.Fallback,
		"recovered": outcome.Recovered,
		"output":    dest,
	}).Info("enhancement written")

	if *report {
		printReport(img, result)
	}
}

// printReport writes the before/after quality assessment to stdout
func printReport(original, processed gocv.Mat) {
	in := core.MetadataOf(original)
	out := core.MetadataOf(processed)
	r := metrics.NewEvaluator().GenerateReport(original, processed)

	fmt.Printf("Input:   %dx%d, %d channels\n", in.Width, in.Height, in.Channels)
	fmt.Printf("Output:  %dx%d, %d channels\n", out.Width, out.Height, out.Channels)
	fmt.Printf("Quality: %s (score %.1f)\n", r.Analysis.QualityLevel, r.OverallScore)
	for name, value := range r.Metrics {
		fmt.Printf("  %-16s %.4f\n", name, value)
	}
	for _, issue := range r.Analysis.Issues {
		fmt.Printf("  issue: %s\n", issue)
	}
	for _, suggestion := range r.Analysis.Suggestions {
		fmt.Printf("  hint:  %s\n", suggestion)
	}
}

func backendOptions(cfg *config.Config) backend.Options {
	return backend.Options{
		ModelDir:      cfg.Models.Dir,
		FaceModel:     cfg.Models.FaceModel,
		SuperResModel: cfg.Models.SuperResModel,
		CascadeFile:   cfg.Models.CascadeFile,
		Device:        cfg.Models.Device,
		Threads:       cfg.Models.Threads,
		LibraryPath:   cfg.Models.LibraryPath,
	}
}

func segmentOptions(cfg *config.Config) segment.Options {
	return segment.Options{
		ModelDir:    cfg.Models.Dir,
		ModelFile:   cfg.Models.MattingModel,
		Device:      cfg.Models.Device,
		Threads:     cfg.Models.Threads,
		LibraryPath: cfg.Models.LibraryPath,
	}
}

func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}
