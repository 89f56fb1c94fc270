package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/framezoom/internal/config"
	"github.com/ivlev/framezoom/internal/director"
	"github.com/ivlev/framezoom/internal/renderer"
	"github.com/ivlev/framezoom/internal/source"
	"github.com/ivlev/framezoom/internal/system"
	"github.com/ivlev/framezoom/internal/ticker"
	"github.com/ivlev/framezoom/internal/video"
	"github.com/ivlev/framezoom/internal/zoomer"
)

// epoch is the virtual clock origin of offline playback
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Project plays a scenario offline at a fixed frame rate and writes the
// captured frames as images, a video, or both.
type Project struct {
	Config   *config.RenderConfig
	Scenario *director.Scenario
	Source   source.Source
	Encoder  video.VideoEncoder

	// ShowProgress prints a line per finished step
	ShowProgress bool
}

// Result is what a run produced
type Result struct {
	Frames []image.Image
	Traces []director.StepTrace
}

func NewProject(cfg *config.RenderConfig, scenario *director.Scenario, src source.Source, ve video.VideoEncoder) *Project {
	return &Project{
		Config:   cfg,
		Scenario: scenario,
		Source:   src,
		Encoder:  ve,
	}
}

func (p *Project) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()

	if p.Config.FPS <= 0 {
		return nil, fmt.Errorf("invalid fps %d", p.Config.FPS)
	}

	page := p.Scenario.Page
	if p.Config.PageIndex >= 0 {
		page = p.Config.PageIndex
	}
	if page < 0 || page >= p.Source.PageCount() {
		return nil, fmt.Errorf("page %d out of range (%d pages)", page, p.Source.PageCount())
	}

	img, err := p.Source.RenderPage(page, p.Config.DPI)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	b := img.Bounds()
	if err := p.Scenario.Validate(b.Dx(), b.Dy()); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	zoomCfg := p.Scenario.Config
	if zoomCfg == nil {
		zoomCfg = config.Defaults()
	}

	if err := system.CheckFrameBudget(p.estimateFrames(zoomCfg), p.Config.Width, p.Config.Height); err != nil {
		return nil, err
	}

	fmt.Println("--- [PROJECT: FRAME ZOOM] ---")
	fmt.Printf("[*] Source: %s | Page: %d | Image: %dx%d\n", p.Config.InputPath, page+1, b.Dx(), b.Dy())
	fmt.Printf("[*] Canvas: %dx%d @ %d FPS | Steps: %d | Zoom ratio: %v\n",
		p.Config.Width, p.Config.Height, p.Config.FPS, len(p.Scenario.Steps), zoomCfg.ZoomRatio)
	fmt.Println("-----------------------------")

	playStart := time.Now()
	res, err := p.play(img, zoomCfg)
	if err != nil {
		return nil, err
	}
	playTime := time.Since(playStart)

	writeStart := time.Now()
	if p.Config.FramesDir != "" {
		if err := p.writeFrames(ctx, res.Frames); err != nil {
			return nil, fmt.Errorf("write frames: %w", err)
		}
	}
	writeTime := time.Since(writeStart)

	encodeStart := time.Now()
	if p.Config.OutputVideo != "" {
		fmt.Println("[*] Encoding video...")
		err := p.Encoder.EncodeFrames(ctx, res.Frames, p.Config.OutputVideo, video.Params{
			FPS:     p.Config.FPS,
			Encoder: p.Config.VideoEncoder,
			Quality: p.Config.Quality,
		})
		if err != nil {
			return nil, fmt.Errorf("encode video: %w", err)
		}
	}
	encodeTime := time.Since(encodeStart)

	if p.Config.TracePath != "" {
		if err := director.WriteTrace(res.Traces, p.Config.TracePath); err != nil {
			return nil, fmt.Errorf("write trace: %w", err)
		}
	}

	if p.Config.ShowStats {
		p.report(len(res.Frames), time.Since(startTime), playTime, writeTime, encodeTime)
	}

	return res, nil
}

// play runs every step against a virtual clock that advances one frame
// interval per tick, capturing the composed viewport after each tick.
func (p *Project) play(img image.Image, zoomCfg *config.Config) (*Result, error) {
	host, err := renderer.NewHost(p.Config.Width, p.Config.Height, zoomCfg.Frame)
	if err != nil {
		return nil, err
	}
	interval := time.Second / time.Duration(p.Config.FPS)
	sched := ticker.NewManual(epoch, interval)

	z, err := zoomer.New(zoomCfg, img, host, sched)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	capture := func() {
		res.Frames = append(res.Frames, host.Render())
	}
	capture()

	// A run cannot last longer than its duration plus one tick
	maxTicks := int(zoomCfg.Duration()/interval) + 2

	for i, st := range p.Scenario.Steps {
		trace := director.StepTrace{Step: i + 1, Focus: st.Focus}

		done := z.ZoomIn(st.Rect.Region(), nil, nil)
		for z.IsAnimationInProcess() {
			if len(trace.Ticks) >= maxTicks || sched.Step() == 0 {
				z.ZoomOut()
				return nil, fmt.Errorf("step %d (%s): animation did not finish", i+1, st.Focus)
			}
			trace.Ticks = append(trace.Ticks, z.Params())
			capture()
		}
		if _, ok := <-done; !ok {
			return nil, fmt.Errorf("step %d (%s): run was superseded", i+1, st.Focus)
		}

		// Frames are not modified after capture, so the hold repeats the last one
		last := res.Frames[len(res.Frames)-1]
		for n := holdFrames(st.Hold, p.Config.FPS); n > 0; n-- {
			res.Frames = append(res.Frames, last)
		}

		z.ZoomOut()
		capture()

		res.Traces = append(res.Traces, trace)
		if p.ShowProgress {
			fmt.Printf("[>] Ready: %d/%d (%s, %d ticks)\n", i+1, len(p.Scenario.Steps), st.Focus, len(trace.Ticks))
		}
	}

	return res, nil
}

func holdFrames(hold float64, fps int) int {
	return int(math.Round(hold * float64(fps)))
}

// estimateFrames is an upper bound of the frames play captures.
func (p *Project) estimateFrames(zoomCfg *config.Config) int {
	perRun := int(math.Ceil(zoomCfg.Duration().Seconds()*float64(p.Config.FPS))) + 1
	n := 1
	for _, st := range p.Scenario.Steps {
		n += perRun + holdFrames(st.Hold, p.Config.FPS) + 1
	}
	return n
}

func (p *Project) writeFrames(ctx context.Context, frames []image.Image) error {
	if err := os.MkdirAll(p.Config.FramesDir, 0755); err != nil {
		return err
	}

	format := p.Config.FrameFormat
	if format == "" {
		format = "png"
	}

	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.DefaultWorkers()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, frame := range frames {
		path := filepath.Join(p.Config.FramesDir, fmt.Sprintf("frame_%05d.%s", i, format))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeFrame(path, frame, format)
		})
	}
	return g.Wait()
}

func writeFrame(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "png":
		err = png.Encode(f, img)
	case "webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		return fmt.Errorf("unsupported frame format %q", format)
	}
	if err != nil {
		return fmt.Errorf("%s encode %s: %w", format, filepath.Base(path), err)
	}
	return f.Close()
}

func (p *Project) report(frames int, total, play, write, encode time.Duration) {
	fps := float64(frames) / total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Playback: %.2fs\n"+
			"Frame Writing: %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), play.Seconds(), write.Seconds(), encode.Seconds(), frames, fps,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Steps: %d | Frames: %d | Total: %.2fs | Play: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.InputPath),
		len(p.Scenario.Steps),
		frames,
		total.Seconds(),
		play.Seconds(),
		encode.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Could not write benchmark.log: %v\n", err)
	}
}
