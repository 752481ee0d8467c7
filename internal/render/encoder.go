package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
)

// Encoder consumes frames in order and finalises the output on Close.
type Encoder interface {
	AddFrame(img image.Image) error
	Close() error
}

var ErrNoFrames = errors.New("render: no frames")

// GIFEncoder buffers paletted frames and writes the animation on Close.
// Every frame stays in memory until then (one byte per pixel, see
// GIFBufferSize), so long runs should be rendered with a stride.
type GIFEncoder struct {
	path   string
	delay  int
	frames []*image.Paletted
}

func NewGIF(path string, fps int) *GIFEncoder {
	if fps <= 0 {
		fps = 20
	}
	return &GIFEncoder{path: path, delay: max(1, 100/fps)}
}

// GIFBufferSize is the memory GIFEncoder holds for frames of width x height.
func GIFBufferSize(frames, width, height int) int64 {
	return int64(frames) * int64(width) * int64(height)
}

func (e *GIFEncoder) AddFrame(img image.Image) error {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.Draw(p, b, img, b.Min, draw.Src)
	e.frames = append(e.frames, p)
	return nil
}

func (e *GIFEncoder) Close() error {
	if len(e.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range e.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, e.delay)
	}
	f, err := os.Create(e.path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	e.frames = nil
	return f.Close()
}

// MJPEGEncoder streams JPEG frames into an AVI container.
type MJPEGEncoder struct {
	aw      mjpeg.AviWriter
	quality int
	buf     bytes.Buffer
	count   int
}

func NewMJPEG(path string, width, height, fps int) (*MJPEGEncoder, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("create avi: fps must be positive, got %d", fps)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("create avi: invalid frame size %dx%d", width, height)
	}
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("create avi: %w", err)
	}
	return &MJPEGEncoder{aw: aw, quality: 90}, nil
}

func (e *MJPEGEncoder) AddFrame(img image.Image) error {
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return err
	}
	e.count++
	return e.aw.AddFrame(e.buf.Bytes())
}

func (e *MJPEGEncoder) Close() error {
	err := e.aw.Close()
	if e.count == 0 && err == nil {
		return ErrNoFrames
	}
	return err
}

// PNGSequence writes frame_0000.png, frame_0001.png, ... into a directory.
type PNGSequence struct {
	dir   string
	count int
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSequence{dir: dir}, nil
}

func (e *PNGSequence) AddFrame(img image.Image) error {
	path := filepath.Join(e.dir, fmt.Sprintf("frame_%04d.png", e.count))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	e.count++
	return f.Close()
}

func (e *PNGSequence) Close() error {
	if e.count == 0 {
		return ErrNoFrames
	}
	return nil
}

// Count is the number of frames written so far.
func (e *PNGSequence) Count() int { return e.count }
