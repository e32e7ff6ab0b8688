// Package camera captures a face template from a video device and uploads it.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/gofrs/flock"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/telemetry"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

const jpegQuality = 85

// State is the capture lifecycle state.
type State int

const (
	StateClosed State = iota
	StateRequesting
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	default:
		return "closed"
	}
}

// Device grants access to a camera.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream yields frames until closed.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Uploader sends an encoded face template to the backend.
type Uploader interface {
	UploadFaceTemplate(ctx context.Context, jpeg []byte) error
}

// Options configures a Pipeline.
type Options struct {
	// MaxDimension bounds the captured frame's width and height. Zero keeps
	// the original size.
	MaxDimension uint
	// LockPath, when set, is an OS file lock held while streaming.
	LockPath string
}

// Pipeline owns at most one camera stream.
type Pipeline struct {
	device   Device
	uploader Uploader
	renderer ui.Renderer
	logger   zerolog.Logger
	opts     Options

	mu      sync.Mutex
	state   State
	stream  Stream
	lock    *flock.Flock
	attempt uint64
}

// NewPipeline creates a closed Pipeline. A nil device means no camera is
// available.
func NewPipeline(device Device, uploader Uploader, renderer ui.Renderer, opts Options, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		device:   device,
		uploader: uploader,
		renderer: renderer,
		opts:     opts,
		logger:   logger.With().Str("component", "camera").Logger(),
	}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Open requests the device. On denial the user is notified and the pipeline
// returns to Closed.
func (p *Pipeline) Open(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateClosed {
		p.mu.Unlock()
		return domain.ErrCameraBusy
	}
	p.state = StateRequesting
	p.attempt++
	attempt := p.attempt
	p.mu.Unlock()

	telemetry.AddBreadcrumb(ctx, telemetry.CategoryCamera, "camera requested")

	lock, stream, err := p.acquire(ctx)
	if err != nil {
		p.mu.Lock()
		if p.attempt == attempt {
			p.state = StateClosed
		}
		p.mu.Unlock()

		p.logger.Warn().Err(err).Msg("camera access denied")
		p.renderer.Notify(ui.LevelError, fmt.Sprintf("%s: %v", domain.ErrCameraUnavailable.Message, err))
		return domain.NewDomainErrorWithCause(domain.ErrCodeCapabilityUnavailable, domain.ErrCameraUnavailable.Message, err)
	}

	p.mu.Lock()
	if p.attempt != attempt || p.state != StateRequesting {
		// Closed while the device was being opened.
		p.mu.Unlock()
		release(stream, lock, p.logger)
		return domain.ErrCameraNotOpen
	}
	p.state = StateStreaming
	p.stream = stream
	p.lock = lock
	p.mu.Unlock()

	p.renderer.SetCameraOpen(true)
	p.logger.Debug().Msg("camera streaming")
	return nil
}

func (p *Pipeline) acquire(ctx context.Context) (*flock.Flock, Stream, error) {
	if p.device == nil {
		return nil, nil, fmt.Errorf("no camera device configured")
	}

	var lock *flock.Flock
	if p.opts.LockPath != "" {
		lock = flock.New(p.opts.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to acquire camera lock: %w", err)
		}
		if !ok {
			return nil, nil, fmt.Errorf("camera is in use by another process")
		}
	}

	stream, err := p.device.Open(ctx)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, nil, err
	}
	return lock, stream, nil
}

// Capture grabs one frame, bounds it, encodes it as JPEG and uploads it as
// the face template. Success closes the camera. Failure keeps it streaming.
func (p *Pipeline) Capture(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateStreaming {
		p.mu.Unlock()
		return domain.ErrCameraNotOpen
	}
	attempt := p.attempt
	frame, err := p.stream.Frame(ctx)
	p.mu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "camera.capture", telemetry.SpanAttributes{Operation: "upload_face_template"})
	defer span.End()

	if err == nil {
		var data []byte
		data, err = EncodeFrame(frame, p.opts.MaxDimension)
		if err == nil {
			err = p.uploader.UploadFaceTemplate(ctx, data)
		}
	}
	if err != nil {
		span.SetError(err)
		p.logger.Warn().Err(err).Msg("face template capture failed")
		p.renderer.Notify(ui.LevelError, ui.MsgFaceFailed)
		return err
	}

	p.renderer.Notify(ui.LevelSuccess, ui.MsgFaceSaved)
	p.closeAttempt(attempt)
	return nil
}

// Close releases the stream from any state.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closeLocked()
}

// closeAttempt closes the camera only if it is still the stream opened by
// attempt. A camera reopened meanwhile is left alone.
func (p *Pipeline) closeAttempt(attempt uint64) {
	p.mu.Lock()
	if p.attempt != attempt {
		p.mu.Unlock()
		return
	}
	p.closeLocked()
}

// closeLocked must be called with mu held and releases it.
func (p *Pipeline) closeLocked() {
	stream, lock := p.stream, p.lock
	wasOpen := p.state != StateClosed
	p.stream, p.lock = nil, nil
	p.state = StateClosed
	p.attempt++
	p.mu.Unlock()

	release(stream, lock, p.logger)
	if wasOpen {
		p.renderer.SetCameraOpen(false)
	}
}

func release(stream Stream, lock *flock.Flock, logger zerolog.Logger) {
	if stream != nil {
		if err := stream.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close camera stream")
		}
	}
	if lock != nil {
		if err := lock.Unlock(); err != nil {
			logger.Warn().Err(err).Msg("failed to release camera lock")
		}
	}
}

// EncodeFrame bounds img to maxDim on both axes and encodes it as JPEG.
func EncodeFrame(img image.Image, maxDim uint) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("empty frame")
	}
	b := img.Bounds()
	if maxDim > 0 && (uint(b.Dx()) > maxDim || uint(b.Dy()) > maxDim) {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
