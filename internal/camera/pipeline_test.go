package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/sentisearch/internal/backend"
	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/testutil"
	"github.com/cloo-solutions/sentisearch/internal/ui"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadFaceTemplate(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

type fakeStream struct {
	img    image.Image
	err    error
	closed atomic.Int32
}

func (s *fakeStream) Frame(context.Context) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.img, nil
}

func (s *fakeStream) Close() error {
	s.closed.Add(1)
	return nil
}

type fakeDevice struct {
	stream *fakeStream
	err    error
}

func (d *fakeDevice) Open(context.Context) (Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 200, G: 120, B: 80, A: 255}}, image.Point{}, draw.Src)
	return img
}

func TestOpen_Denied(t *testing.T) {
	view := ui.NewSnapshot(time.Minute)
	p := NewPipeline(&fakeDevice{err: errors.New("permission denied")}, new(MockUploader), view, Options{}, zerolog.Nop())

	err := p.Open(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsCapabilityUnavailable(err))
	assert.Equal(t, StateClosed, p.State())

	st := view.State()
	assert.False(t, st.CameraOpen)
	last, ok := st.LastNotification()
	require.True(t, ok)
	assert.Contains(t, last.Message, "cannot access camera")
}

func TestOpen_NoDevice(t *testing.T) {
	view := ui.NewSnapshot(time.Minute)
	p := NewPipeline(nil, new(MockUploader), view, Options{}, zerolog.Nop())

	err := p.Open(context.Background())
	assert.True(t, domain.IsCapabilityUnavailable(err))
	assert.Equal(t, StateClosed, p.State())
}

func TestOpen_StreamsAndRejectsSecondOpen(t *testing.T) {
	view := ui.NewSnapshot(time.Minute)
	stream := &fakeStream{img: solidImage(8, 8)}
	p := NewPipeline(&fakeDevice{stream: stream}, new(MockUploader), view, Options{}, zerolog.Nop())

	require.NoError(t, p.Open(context.Background()))
	assert.Equal(t, StateStreaming, p.State())
	assert.True(t, view.State().CameraOpen)

	assert.ErrorIs(t, p.Open(context.Background()), domain.ErrCameraBusy)

	p.Close()
	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, int32(1), stream.closed.Load())
	assert.False(t, view.State().CameraOpen)
}

func TestClose_FromAnyState(t *testing.T) {
	view := ui.NewSnapshot(time.Minute)
	p := NewPipeline(&fakeDevice{stream: &fakeStream{}}, new(MockUploader), view, Options{}, zerolog.Nop())

	assert.NotPanics(t, func() {
		p.Close()
		p.Close()
	})
	assert.Equal(t, StateClosed, p.State())
}

func TestCapture_RequiresStreaming(t *testing.T) {
	uploader := new(MockUploader)
	p := NewPipeline(&fakeDevice{stream: &fakeStream{}}, uploader, ui.NewSnapshot(time.Minute), Options{}, zerolog.Nop())

	assert.ErrorIs(t, p.Capture(context.Background()), domain.ErrCameraNotOpen)
	uploader.AssertNotCalled(t, "UploadFaceTemplate", mock.Anything, mock.Anything)
}

func TestCapture_SuccessClosesCamera(t *testing.T) {
	view := ui.NewSnapshot(time.Minute)
	stream := &fakeStream{img: solidImage(40, 20)}
	uploader := new(MockUploader)
	uploader.On("UploadFaceTemplate", mock.Anything, mock.MatchedBy(func(data []byte) bool {
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		return err == nil && cfg.Width == 40 && cfg.Height == 20
	})).Return(nil).Once()

	p := NewPipeline(&fakeDevice{stream: stream}, uploader, view, Options{}, zerolog.Nop())
	require.NoError(t, p.Open(context.Background()))
	require.NoError(t, p.Capture(context.Background()))

	uploader.AssertExpectations(t)
	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, int32(1), stream.closed.Load())
	last, ok := view.State().LastNotification()
	require.True(t, ok)
	assert.Equal(t, ui.MsgFaceSaved, last.Message)
}

func TestCapture_SuccessLeavesReopenedCameraAlone(t *testing.T) {
	view := ui.NewSnapshot(time.Minute)
	first := &fakeStream{img: solidImage(4, 4)}
	second := &fakeStream{img: solidImage(4, 4)}
	device := &fakeDevice{stream: first}
	uploader := new(MockUploader)

	p := NewPipeline(device, uploader, view, Options{}, zerolog.Nop())
	uploader.On("UploadFaceTemplate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			p.Close()
			device.stream = second
			require.NoError(t, p.Open(context.Background()))
		}).
		Return(nil).Once()

	require.NoError(t, p.Open(context.Background()))
	require.NoError(t, p.Capture(context.Background()))

	assert.Equal(t, StateStreaming, p.State())
	assert.Equal(t, int32(1), first.closed.Load())
	assert.Equal(t, int32(0), second.closed.Load())
	assert.True(t, view.State().CameraOpen)
}

func TestCapture_UploadFailureKeepsStreaming(t *testing.T) {
	view := ui.NewSnapshot(time.Minute)
	stream := &fakeStream{img: solidImage(4, 4)}
	uploader := new(MockUploader)
	uploader.On("UploadFaceTemplate", mock.Anything, mock.Anything).
		Return(domain.NewRequestError("/upload_face_template", errors.New("503"))).Once()

	p := NewPipeline(&fakeDevice{stream: stream}, uploader, view, Options{}, zerolog.Nop())
	require.NoError(t, p.Open(context.Background()))

	err := p.Capture(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsRequest(err))
	assert.Equal(t, StateStreaming, p.State())
	assert.Zero(t, stream.closed.Load())
	last, _ := view.State().LastNotification()
	assert.Equal(t, ui.MsgFaceFailed, last.Message)

	p.Close()
	assert.Equal(t, int32(1), stream.closed.Load())
}

func TestCapture_FrameErrorKeepsStreaming(t *testing.T) {
	stream := &fakeStream{err: errors.New("device unplugged")}
	uploader := new(MockUploader)
	p := NewPipeline(&fakeDevice{stream: stream}, uploader, ui.NewSnapshot(time.Minute), Options{}, zerolog.Nop())
	require.NoError(t, p.Open(context.Background()))

	assert.Error(t, p.Capture(context.Background()))
	assert.Equal(t, StateStreaming, p.State())
	uploader.AssertNotCalled(t, "UploadFaceTemplate", mock.Anything, mock.Anything)
	p.Close()
}

func TestOpen_LockIsExclusiveAcrossPipelines(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "camera.lock")
	opts := Options{LockPath: lockPath}
	first := NewPipeline(&fakeDevice{stream: &fakeStream{}}, new(MockUploader), ui.NewSnapshot(time.Minute), opts, zerolog.Nop())
	second := NewPipeline(&fakeDevice{stream: &fakeStream{}}, new(MockUploader), ui.NewSnapshot(time.Minute), opts, zerolog.Nop())

	require.NoError(t, first.Open(context.Background()))
	err := second.Open(context.Background())
	assert.True(t, domain.IsCapabilityUnavailable(err))
	assert.Equal(t, StateClosed, second.State())

	first.Close()
	require.NoError(t, second.Open(context.Background()))
	second.Close()
}

func TestCapture_UploadsMultipartToBackend(t *testing.T) {
	b := testutil.NewBackend(t)
	client := backend.NewClient(b.URL(), 5*time.Second, zerolog.Nop())

	dir := t.TempDir()
	still := filepath.Join(dir, "face.png")
	f, err := os.Create(still)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solidImage(3000, 1500)))
	require.NoError(t, f.Close())

	p := NewPipeline(FileDevice{Path: still}, client, ui.NewSnapshot(time.Minute), Options{MaxDimension: 1280}, zerolog.Nop())
	require.NoError(t, p.Open(context.Background()))
	require.NoError(t, p.Capture(context.Background()))

	calls := b.Calls(backend.PathUploadFaceTemplate)
	require.Len(t, calls, 1)
	assert.Equal(t, "image", calls[0].FileField)
	assert.Equal(t, "face_template.jpg", calls[0].FileName)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(calls[0].FileData))
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 640, cfg.Height)
}

func TestEncodeFrame(t *testing.T) {
	_, err := EncodeFrame(nil, 100)
	assert.Error(t, err)

	data, err := EncodeFrame(solidImage(50, 10), 0)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)

	data, err = EncodeFrame(solidImage(10, 50), 25)
	require.NoError(t, err)
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Height)
	assert.Equal(t, 5, cfg.Width)
}

func TestFileDevice_Missing(t *testing.T) {
	_, err := FileDevice{Path: filepath.Join(t.TempDir(), "none.png")}.Open(context.Background())
	assert.Error(t, err)
}

func TestFFmpegDevice_MissingDevice(t *testing.T) {
	_, err := FFmpegDevice{FFmpegPath: "ffmpeg", Device: filepath.Join(t.TempDir(), "video9")}.Open(context.Background())
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "requesting", StateRequesting.String())
	assert.Equal(t, "streaming", StateStreaming.String())
}
