package video

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Params описывают сборку видео из пронумерованных PNG-кадров.
type Params struct {
	// FPS is the input frame rate, 1/speed.
	FPS float64
	// Pattern is the ffmpeg input pattern, e.g. frames/%05d.png.
	Pattern string
	Output  string
	Codec   string
	// Quality: CRF для libx264, CQ для nvenc, битрейт Q*100k для VideoToolbox.
	// Zero leaves the encoder default.
	Quality int
}

type VideoEncoder interface {
	Assemble(ctx context.Context, p Params) error
}

type FFmpegEncoder struct {
	Path string
}

func (e *FFmpegEncoder) Assemble(ctx context.Context, p Params) error {
	path := e.Path
	if path == "" {
		path = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, path, BuildArgs(p)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg error: %v, output: %s", err, string(out))
	}
	return nil
}

// BuildArgs returns the ffmpeg arguments for p. The pad filter rounds the
// frame size up to even numbers as yuv420p requires.
func BuildArgs(p Params) []string {
	codec := p.Codec
	if codec == "" {
		codec = "libx264"
	}
	args := []string{
		"-y",
		"-r", strconv.FormatFloat(p.FPS, 'f', -1, 64),
		"-i", p.Pattern,
		"-c:v", codec,
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
	}

	// Качество в зависимости от энкодера
	if p.Quality > 0 {
		switch codec {
		case "h264_videotoolbox":
			args = append(args, "-b:v", fmt.Sprintf("%dk", p.Quality*100))
		case "h264_nvenc":
			args = append(args, "-cq", strconv.Itoa(p.Quality))
		default: // libx264
			args = append(args, "-crf", strconv.Itoa(p.Quality), "-preset", "medium")
		}
	}

	return append(args, p.Output)
}
