package camera

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDevice_MissingDevice(t *testing.T) {
	d := Device{Path: filepath.Join(t.TempDir(), "video9")}
	if _, err := d.Open(context.Background()); err == nil {
		t.Fatal("expected error for missing device")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.jpg")
	if err := os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := File{Path: path}.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	frame, err := s.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if len(frame) != 3 {
		t.Errorf("frame = %v", frame)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := s.Frame(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame() after close error = %v, want ErrClosed", err)
	}
}

func TestFile_Missing(t *testing.T) {
	if _, err := (File{Path: "/nonexistent/face.jpg"}).Open(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	u := NewUpload()

	if err := u.Put([]byte{1}); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() before Open error = %v, want ErrClosed", err)
	}

	s, err := u.Open(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Frame(ctx); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Frame() before Put error = %v, want ErrNoFrame", err)
	}

	if err := u.Put([]byte{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := u.Put([]byte{3, 4, 5}); err != nil {
		t.Fatal(err)
	}
	frame, err := s.Frame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(frame) != 3 || frame[0] != 3 {
		t.Errorf("Frame() = %v, want latest frame", frame)
	}
	if !u.Live() {
		t.Error("expected live stream")
	}

	_ = s.Close()
	if u.Live() {
		t.Error("stream still live after close")
	}
	if err := u.Put([]byte{6}); !errors.Is(err, ErrClosed) {
		t.Errorf("Put() after close error = %v, want ErrClosed", err)
	}
}

func TestUpload_ReopenReplacesStream(t *testing.T) {
	ctx := context.Background()
	u := NewUpload()
	first, _ := u.Open(ctx)
	second, _ := u.Open(ctx)

	if _, err := first.Frame(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("old stream Frame() error = %v, want ErrClosed", err)
	}
	if err := u.Put([]byte{7}); err != nil {
		t.Fatal(err)
	}
	if frame, err := second.Frame(ctx); err != nil || frame[0] != 7 {
		t.Errorf("new stream Frame() = %v, %v", frame, err)
	}
}
