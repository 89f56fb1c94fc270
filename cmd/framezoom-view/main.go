package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/director"
	"github.com/ivlev/framezoom/internal/source"
	"github.com/ivlev/framezoom/internal/viewer"
)

type options struct {
	input    string
	scenario string
	config   string
	page     int
	dpi      int
	width    int
	height   int
	auto     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "Path to a PDF, an image or a folder of images")
	flag.StringVar(&opts.scenario, "scenario", "", "Scenario YAML (default: newest file in scenarios/)")
	flag.StringVar(&opts.config, "config", "", "Zoom config YAML, overrides the scenario config")
	flag.IntVar(&opts.page, "page", -1, "Page or image index (default: the scenario page)")
	flag.IntVar(&opts.dpi, "dpi", 150, "DPI for PDF pages")
	flag.IntVar(&opts.width, "width", 1280, "Canvas width")
	flag.IntVar(&opts.height, "height", 720, "Canvas height")
	flag.BoolVar(&opts.auto, "auto", true, "Play steps one after another")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("[-] %v", err)
	}
}

func run(opts options) error {
	scenarioPath := opts.scenario
	if scenarioPath == "" {
		latest, err := director.FindLatestScenario("scenarios")
		if err != nil {
			return fmt.Errorf("%w. Pass -scenario", err)
		}
		scenarioPath = latest
	}
	scenario, err := director.ReadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("read scenario: %w", err)
	}
	if opts.config != "" {
		cfg, err := config.Load(opts.config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		scenario.Config = cfg
	}

	inputPath := opts.input
	if inputPath == "" {
		inputPath = scenario.Input
	}
	if inputPath == "" {
		return fmt.Errorf("no input in scenario, pass -input")
	}

	src, err := source.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	page := scenario.Page
	if opts.page >= 0 {
		page = opts.page
	}
	img, err := src.RenderPage(page, opts.dpi)
	if err != nil {
		return fmt.Errorf("render page %d: %w", page, err)
	}

	v, err := viewer.New(img, scenario, opts.width, opts.height)
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	v.AutoPlay = opts.auto

	fmt.Printf("[*] Scenario: %s | Steps: %d\n", scenarioPath, len(scenario.Steps))
	fmt.Println("[*] Space/Right: next step | Esc: zoom out | Q: quit")

	w, h := v.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(v.Title())

	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
