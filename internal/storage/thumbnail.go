package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/disintegration/imaging"
)

// Thumbnailer derives JPEG previews from uploaded media. Images are
// resized in-process; videos go through an external ffmpeg binary.
type Thumbnailer struct {
	size          int
	ffmpegPath    string
	ffmpegTimeout time.Duration
}

func NewThumbnailer(size int, ffmpegPath string, ffmpegTimeout time.Duration) *Thumbnailer {
	return &Thumbnailer{size: size, ffmpegPath: ffmpegPath, ffmpegTimeout: ffmpegTimeout}
}

// FromImage decodes content and writes an aspect-preserving thumbnail to
// dst. Fit only scales down, so images already smaller than the target
// keep their size.
func (t *Thumbnailer) FromImage(content []byte, dst string) error {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fit(img, t.size, t.size, imaging.Lanczos)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	if err := imaging.Encode(out, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		out.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Close()
}

// FromVideo extracts a frame one second in and scales it down, bounded by
// the configured timeout.
func (t *Thumbnailer) FromVideo(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, t.ffmpegTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffmpegPath, t.videoArgs(src, dst)...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("ffmpeg timed out after %s", t.ffmpegTimeout)
	}
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// videoArgs builds the ffmpeg invocation. The image2 muxer is forced
// because the staged output name does not end in .jpg.
func (t *Thumbnailer) videoArgs(src, dst string) []string {
	scale := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", t.size, t.size)
	return []string{
		"-i", src,
		"-ss", "00:00:01",
		"-vframes", "1",
		"-vf", scale,
		"-f", "image2",
		"-y",
		dst,
	}
}
