package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
)

// FFmpegDevice grabs single frames from a video4linux device through ffmpeg.
type FFmpegDevice struct {
	FFmpegPath string
	Device     string
}

func (d FFmpegDevice) Open(ctx context.Context) (Stream, error) {
	if _, err := os.Stat(d.Device); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d.Device, err)
	}
	if _, err := exec.LookPath(d.FFmpegPath); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	return &ffmpegStream{device: d}, nil
}

type ffmpegStream struct {
	device FFmpegDevice
}

func (s *ffmpegStream) Frame(ctx context.Context) (image.Image, error) {
	cmd := exec.CommandContext(ctx, s.device.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2", "-i", s.device.Device,
		"-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to grab frame: %w: %s", err, stderr.String())
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

func (s *ffmpegStream) Close() error { return nil }

// FileDevice serves a still image as every frame.
type FileDevice struct {
	Path string
}

func (d FileDevice) Open(_ context.Context) (Stream, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &stillStream{img: img}, nil
}

type stillStream struct {
	img    image.Image
	closed bool
}

func (s *stillStream) Frame(_ context.Context) (image.Image, error) {
	if s.closed {
		return nil, fmt.Errorf("stream closed")
	}
	return s.img, nil
}

func (s *stillStream) Close() error {
	s.closed = true
	return nil
}
