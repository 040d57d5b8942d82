package ffmpeg

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"25/1", 25, false},
		{"30000/1001", 29.97002997002997, false},
		{"10/1", 10, false},
		{"24", 24, false},
		{"0/0", 0, true},
		{"0/1", 0, true},
		{"", 0, true},
		{"abc/1", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFrameRate(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, e.ErrUnreadableVideo) {
				t.Errorf("ParseFrameRate(%q): expected ErrUnreadableVideo, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFrameRate(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseFrameRate(%q) = %f, want %f", tt.raw, got, tt.want)
		}
	}
}

func TestSamplingInterval(t *testing.T) {
	tests := []struct {
		native, target float64
		want           int
	}{
		{30, 1, 30},
		{29.97, 1, 30},
		{10, 1, 10},
		{25, 2, 13},  // round(12.5)
		{24, 30, 1},  // target выше нативной — каждый кадр
		{1, 1, 1},
	}

	for _, tt := range tests {
		if got := SamplingInterval(tt.native, tt.target); got != tt.want {
			t.Errorf("SamplingInterval(%f, %f) = %d, want %d", tt.native, tt.target, got, tt.want)
		}
	}
}

// Видео 10 секунд при 10 fps и целевой частоте 1 fps даёт кадры 0..9
// с метками 0.0..9.0.
func TestFrameTimestampTenSecondClip(t *testing.T) {
	const (
		nativeFPS = 10.0
		targetFPS = 1.0
	)

	interval := SamplingInterval(nativeFPS, targetFPS)
	if interval != 10 {
		t.Fatalf("interval = %d, want 10", interval)
	}

	for i := 0; i < 10; i++ {
		got := FrameTimestamp(i, interval, nativeFPS)
		if math.Abs(got-float64(i)) > 1e-9 {
			t.Errorf("frame %d timestamp = %f, want %d.0", i, got, i)
		}
	}
}

// jpegBytes собирает минимальный поток из JPEG-подобных блобов.
func jpegBytes(payloads ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range payloads {
		buf.Write([]byte{0xFF, 0xD8})
		buf.Write(p)
		buf.Write([]byte{0xFF, 0xD9})
	}
	return buf.Bytes()
}

func TestReadJPEGSplitsStream(t *testing.T) {
	stream := jpegBytes([]byte{0x01, 0x02}, []byte{0x03}, []byte{})
	r := bufio.NewReader(bytes.NewReader(stream))

	var frames [][]byte
	for {
		frame, err := readJPEG(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		frames = append(frames, frame)
	}

	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}

	want := [][]byte{
		{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9},
		{0xFF, 0xD8, 0x03, 0xFF, 0xD9},
		{0xFF, 0xD8, 0xFF, 0xD9},
	}
	for i := range want {
		if !bytes.Equal(frames[i], want[i]) {
			t.Errorf("frame %d = %x, want %x", i, frames[i], want[i])
		}
	}
}

func TestReadJPEGDropsTruncatedTail(t *testing.T) {
	stream := append(jpegBytes([]byte{0xAA}), 0xFF, 0xD8, 0xBB) // второй кадр без EOI
	r := bufio.NewReader(bytes.NewReader(stream))

	if _, err := readJPEG(r); err != nil {
		t.Fatalf("first frame: unexpected error %v", err)
	}
	if _, err := readJPEG(r); err != io.EOF {
		t.Fatalf("truncated frame: got %v, want io.EOF", err)
	}
}

func TestReadJPEGEmptyStream(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))
	if _, err := readJPEG(r); err != io.EOF {
		t.Fatalf("empty stream: got %v, want io.EOF", err)
	}
}
