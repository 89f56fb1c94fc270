package video

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

type VideoEncoder interface {
	EncodeFrames(ctx context.Context, frames []image.Image, videoPath string, params Params) error
}

// Params describes the output stream
type Params struct {
	FPS     int
	Encoder string
	Quality int
}

type FFmpegEncoder struct{}

// EncodeFrames pipes the frames to ffmpeg as raw RGBA. All frames must have
// the size of the first one.
func (e *FFmpegEncoder) EncodeFrames(
	ctx context.Context,
	frames []image.Image,
	videoPath string,
	params Params,
) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	size := frames[0].Bounds().Size()

	args := e.buildFFmpegArgs(size.X, size.Y, videoPath, params)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	for i, img := range frames {
		if img.Bounds().Size() != size {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("frame %d is %v, expected %v", i, img.Bounds().Size(), size)
		}
		if err := e.writeRawRGBA(stdin, img); err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("write raw error: %w", err)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w", err)
	}

	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(inputW, inputH int, videoPath string, params Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	}

	switch params.Encoder {
	case "h264_videotoolbox":
		bitrate := params.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", params.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", params.Quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
