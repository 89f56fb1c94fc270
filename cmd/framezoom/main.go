package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ivlev/framezoom/internal/analyzer"
	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/director"
	"github.com/ivlev/framezoom/internal/engine"
	"github.com/ivlev/framezoom/internal/source"
	"github.com/ivlev/framezoom/internal/system"
	"github.com/ivlev/framezoom/internal/video"
)

var buildVersion = "dev"

type options struct {
	input        string
	scenario     string
	config       string
	regions      string
	detect       string
	duration     float64
	saveScenario bool
	output       string
	noVideo      bool
	frames       string
	format       string
	trace        string
	width        int
	height       int
	fps          int
	workers      int
	dpi          int
	page         int
	quality      int
	stats        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "Path to a PDF, an image or a folder of images (default: newest file in input/)")
	flag.StringVar(&opts.scenario, "scenario", "", "Scenario YAML (default: newest file in scenarios/)")
	flag.StringVar(&opts.config, "config", "", "Zoom config YAML, overrides the scenario config")
	flag.StringVar(&opts.regions, "regions", "", "Plan a scenario from regions \"x,y,w,h;x,y,w,h\" instead of reading one")
	flag.StringVar(&opts.detect, "detect", "", "Plan a scenario from regions found by a detector: contrast")
	flag.Float64Var(&opts.duration, "duration", 10, "Total duration when planning a scenario (seconds)")
	flag.BoolVar(&opts.saveScenario, "save-scenario", false, "Save the planned scenario to scenarios/")
	flag.StringVar(&opts.output, "output", "", "Video path (default: generated in output/)")
	flag.BoolVar(&opts.noVideo, "no-video", false, "Do not encode a video")
	flag.StringVar(&opts.frames, "frames", "", "Write every frame to this folder")
	flag.StringVar(&opts.format, "format", "png", "Frame format: png, webp")
	flag.StringVar(&opts.trace, "trace", "", "Write per-tick animation params to this YAML file")
	flag.IntVar(&opts.width, "width", 1280, "Canvas width")
	flag.IntVar(&opts.height, "height", 720, "Canvas height")
	flag.IntVar(&opts.fps, "fps", 30, "FPS")
	flag.IntVar(&opts.workers, "workers", system.DefaultWorkers(), "Frame writer workers")
	flag.IntVar(&opts.dpi, "dpi", 150, "DPI for PDF pages")
	flag.IntVar(&opts.page, "page", -1, "Page or image index (default: the scenario page)")
	flag.IntVar(&opts.quality, "quality", 0, "Video quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	flag.BoolVar(&opts.stats, "stats", false, "Print the performance report")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("[-] %v", err)
	}
}

func run(opts options) error {
	// Create the working directories if missing
	for _, d := range []string{"input", "output", "scenarios"} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}

	var scenario *director.Scenario
	var err error
	switch {
	case opts.regions != "":
		regions, err := director.ParseRegions(opts.regions)
		if err != nil {
			return fmt.Errorf("regions: %w", err)
		}
		if scenario, err = planScenario(regions, opts); err != nil {
			return fmt.Errorf("plan scenario: %w", err)
		}
	case opts.detect == "":
		scenario, err = loadScenario(opts.scenario, opts.config)
		if err != nil && opts.scenario == "" {
			// Nothing to play yet, find the regions on the page
			log.Printf("[!] %v, detecting regions", err)
			opts.detect = "contrast"
		} else if err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
	}

	inputPath := opts.input
	if inputPath == "" && scenario != nil {
		inputPath = scenario.Input
	}
	if inputPath == "" {
		latest, err := system.FindLatestInput("input", source.IsImage)
		if err != nil {
			return fmt.Errorf("%w. Put a PDF or an image into input/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Selected file: %s\n", inputPath)
	}

	src, err := source.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	if src.PageCount() == 0 {
		return fmt.Errorf("the source has no pages or images")
	}

	if scenario == nil {
		opts.input = inputPath
		if scenario, err = detectScenario(src, opts); err != nil {
			return err
		}
	}

	finalOutput := opts.output
	if finalOutput == "" && !opts.noVideo {
		baseName := filepath.Base(inputPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName := "libx264"
	quality := opts.quality
	if finalOutput != "" {
		encoderName, _ = system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Hardware acceleration detected: %s\n", encoderName)
		}
		if quality == 0 {
			quality = system.DefaultQuality(encoderName)
		}
	}

	cfg := &config.RenderConfig{
		InputPath:    inputPath,
		OutputVideo:  finalOutput,
		FramesDir:    opts.frames,
		FrameFormat:  opts.format,
		TracePath:    opts.trace,
		Width:        opts.width,
		Height:       opts.height,
		FPS:          opts.fps,
		Workers:      opts.workers,
		DPI:          opts.dpi,
		PageIndex:    opts.page,
		VideoEncoder: encoderName,
		Quality:      quality,
		ShowStats:    opts.stats,
		BuildVersion: buildVersion,
	}

	if cfg.OutputVideo == "" && cfg.FramesDir == "" && cfg.TracePath == "" {
		return fmt.Errorf("nothing to write: pass -output, -frames or -trace")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewProject(cfg, scenario, src, &video.FFmpegEncoder{})
	project.ShowProgress = term.IsTerminal(int(os.Stdout.Fd()))

	if _, err := project.Run(ctx); err != nil {
		return fmt.Errorf("project: %w", err)
	}

	if cfg.OutputVideo != "" {
		fmt.Printf("[+++] Success! Result: %s\n", cfg.OutputVideo)
	} else {
		fmt.Println("[+++] Success!")
	}
	return nil
}

// detectScenario runs the detector on the page and plans a scenario over
// the regions it finds.
func detectScenario(src source.Source, opts options) (*director.Scenario, error) {
	det, err := analyzer.NewDetector(opts.detect)
	if err != nil {
		return nil, err
	}

	page := max(opts.page, 0)
	img, err := src.RenderPage(page, opts.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d for analysis: %w", page, err)
	}

	fmt.Printf("[*] Analysing page %d...\n", page+1)
	regions, err := analyzer.Regions(det, img)
	if err != nil {
		return nil, fmt.Errorf("analyse page %d: %w", page, err)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions found on page %d, pass -regions", page+1)
	}
	fmt.Printf("[*] Found %d regions\n", len(regions))

	scenario, err := planScenario(regions, opts)
	if err != nil {
		return nil, fmt.Errorf("plan scenario: %w", err)
	}
	scenario.Page = page
	return scenario, nil
}

func planScenario(regions []director.Rectangle, opts options) (*director.Scenario, error) {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return nil, err
	}

	scenario, err := director.NewDirector().Plan(opts.input, regions, opts.duration, cfg.Duration())
	if err != nil {
		return nil, err
	}
	scenario.Config = cfg

	if opts.saveScenario {
		path := director.GenerateScenarioPath("scenarios")
		if err := director.WriteScenario(scenario, path); err != nil {
			return nil, err
		}
		fmt.Printf("[*] Scenario saved: %s\n", path)
	}
	return scenario, nil
}

func loadScenario(path, configPath string) (*director.Scenario, error) {
	if path == "" {
		latest, err := director.FindLatestScenario("scenarios")
		if err != nil {
			return nil, err
		}
		path = latest
		fmt.Printf("[*] Using scenario: %s\n", path)
	}

	scenario, err := director.ReadScenario(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		scenario.Config = cfg
	}
	return scenario, nil
}
