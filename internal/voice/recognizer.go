package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Transcriber sends recorded audio to a speech-to-text service.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// AudioSource yields one recorded utterance as a file.
type AudioSource interface {
	// Record returns the path of the recording and a cleanup function.
	Record(ctx context.Context) (string, func(), error)
}

// TranscribeRecognizer records from an AudioSource and transcribes remotely.
type TranscribeRecognizer struct {
	Source      AudioSource
	Transcriber Transcriber
}

func (r *TranscribeRecognizer) Recognize(ctx context.Context) (string, error) {
	path, cleanup, err := r.Source.Record(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	return r.Transcriber.Transcribe(ctx, filepath.Base(path), f)
}

// FileSource replays an existing recording.
type FileSource struct {
	Path string
}

func (s FileSource) Record(_ context.Context) (string, func(), error) {
	if _, err := os.Stat(s.Path); err != nil {
		return "", nil, fmt.Errorf("failed to stat audio file: %w", err)
	}
	return s.Path, func() {}, nil
}

// FFmpegSource records a fixed-length clip from a capture device.
type FFmpegSource struct {
	FFmpegPath string
	Format     string
	Device     string
	Duration   time.Duration
}

func (s FFmpegSource) Record(ctx context.Context) (string, func(), error) {
	dir, err := os.MkdirTemp("", "sentisearch-voice-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	out := filepath.Join(dir, "utterance.wav")

	seconds := strconv.FormatFloat(s.Duration.Seconds(), 'f', 1, 64)
	cmd := exec.CommandContext(ctx, s.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", s.Format, "-i", s.Device,
		"-t", seconds, "-ac", "1", "-ar", "16000",
		"-y", out)
	if output, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to record audio: %w: %s", err, output)
	}
	return out, cleanup, nil
}

// ErrScriptExhausted is returned once a ScriptedRecognizer has no more
// transcripts.
var ErrScriptExhausted = errors.New("no more scripted transcripts")

// ScriptedRecognizer returns canned transcripts in order. It drives
// automation and tests.
type ScriptedRecognizer struct {
	mu          sync.Mutex
	transcripts []string
	err         error
}

// NewScriptedRecognizer returns transcripts one per call.
func NewScriptedRecognizer(transcripts ...string) *ScriptedRecognizer {
	return &ScriptedRecognizer{transcripts: transcripts}
}

// FailWith makes the next calls return err.
func (r *ScriptedRecognizer) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *ScriptedRecognizer) Recognize(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	if len(r.transcripts) == 0 {
		return "", ErrScriptExhausted
	}
	next := r.transcripts[0]
	r.transcripts = r.transcripts[1:]
	return next, nil
}
