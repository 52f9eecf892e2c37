// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/karamix/audio"
	"github.com/ik5/karamix/formats/wav"
)

func wavBytes(t *testing.T, rate, channels, frames int, value float32) []byte {
	t.Helper()

	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
		for f := range data[c] {
			data[c][f] = value
		}
	}

	buf, err := audio.NewBufferFromChannels(rate, data)
	if err != nil {
		t.Fatalf("NewBufferFromChannels() error = %v", err)
	}

	out, err := wav.EncodeBytes(context.Background(), buf, 0)
	if err != nil {
		t.Fatalf("EncodeBytes() error = %v", err)
	}
	return out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// fetchFunc adapts a function to Fetcher.
type fetchFunc func(ctx context.Context, locator string) ([]byte, error)

func (f fetchFunc) Fetch(ctx context.Context, locator string) ([]byte, error) {
	return f(ctx, locator)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "backing.wav", wavBytes(t, 8000, 2, 800, 0.5))

	for _, locator := range []string{path, "file://" + filepath.ToSlash(path)} {
		buf, err := New().Load(context.Background(), locator, 8000)
		if err != nil {
			t.Fatalf("Load(%q) error = %v", locator, err)
		}

		if buf.SampleRate() != 8000 || buf.NumberOfChannels() != 2 || buf.Length() != 800 {
			t.Errorf("Load(%q) = %d Hz %d ch %d frames, want 8000 Hz 2 ch 800 frames",
				locator, buf.SampleRate(), buf.NumberOfChannels(), buf.Length())
		}
	}
}

func TestLoad_HTTP(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 8000, 1, 400, 0.25)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vocal" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)

	l := New(WithHTTPClient(srv.Client()))

	buf, err := l.Load(context.Background(), srv.URL+"/vocal", 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if buf.Length() != 400 {
		t.Errorf("Length() = %d, want 400", buf.Length())
	}

	_, err = l.Load(context.Background(), srv.URL+"/missing", 0)
	if !errors.Is(err, ErrLoad) || !errors.Is(err, ErrHTTPStatus) {
		t.Errorf("Load(404) error = %v, want ErrLoad wrapping ErrHTTPStatus", err)
	}
	if IsCanceled(err) {
		t.Error("IsCanceled(404) = true, want false")
	}
}

func TestLoad_Resamples(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "take.wav", wavBytes(t, 22050, 1, 22050, 0.5))

	buf, err := New().Load(context.Background(), path, 44100)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if buf.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", buf.SampleRate())
	}
	if d := buf.Duration(); d < 0.99 || d > 1.01 {
		t.Errorf("Duration() = %v, want about 1s", d)
	}
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		locator string
		want    error
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.wav"), os.ErrNotExist},
		{"unknown format", writeFile(t, "notes.txt", []byte("just some text, not audio")), ErrUnsupportedFormat},
		{"bad wav", writeFile(t, "broken.wav", []byte("RIFF\x00\x00\x00\x00WAVEjunk")), wav.ErrNotWavFile},
		{"empty wav", writeFile(t, "short.wav", []byte("garbage")), wav.ErrNotWavFile},
		{"unsupported scheme", "ftp://example.com/a.wav", ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, err := New().Load(context.Background(), tt.locator, 0)
			if buf != nil {
				t.Error("Load() returned a buffer on failure")
			}
			if !errors.Is(err, ErrLoad) || !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want ErrLoad wrapping %v", err, tt.want)
			}
			if IsCanceled(err) {
				t.Errorf("IsCanceled(%v) = true, want false", err)
			}
		})
	}
}

func TestLoad_ExtensionFallback(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 8000, 1, 10, 0)

	// a registry whose wav entry never matches by header
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, func([]byte) bool { return false })

	fetch := fetchFunc(func(context.Context, string) ([]byte, error) { return data, nil })
	l := New(WithRegistry(reg), WithFetcher(fetch))

	if _, err := l.Load(context.Background(), "https://cdn.example.com/track.WAV?sig=1", 0); err != nil {
		t.Errorf("Load(.WAV) error = %v, want nil", err)
	}
	if _, err := l.Load(context.Background(), "https://cdn.example.com/track", 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(no extension) error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestLoad_CanceledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	fetch := fetchFunc(func(context.Context, string) ([]byte, error) {
		called = true
		return nil, nil
	})

	_, err := New(WithFetcher(fetch)).Load(ctx, "x.wav", 0)
	if !IsCanceled(err) || !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want ErrCanceled and context.Canceled", err)
	}
	if errors.Is(err, ErrLoad) {
		t.Error("cancellation reported as ErrLoad")
	}
	if called {
		t.Error("fetch ran after cancellation")
	}
}

func TestLoad_CanceledWhileFetching(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 8000, 1, 100, 0.5)
	ctx, cancel := context.WithCancel(context.Background())

	// the response arrives after the cancellation and is ignored
	fetch := fetchFunc(func(context.Context, string) ([]byte, error) {
		cancel()
		return data, nil
	})

	buf, err := New(WithFetcher(fetch)).Load(ctx, "x.wav", 0)
	if buf != nil {
		t.Error("Load() returned a buffer after cancellation")
	}
	if !IsCanceled(err) {
		t.Errorf("Load() error = %v, want ErrCanceled", err)
	}
}

func TestLoad_HTTPCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := New(WithHTTPClient(srv.Client())).Load(ctx, srv.URL+"/a.wav", 0)
		errc <- err
	}()

	cancel()
	if err := <-errc; !IsCanceled(err) {
		t.Errorf("Load() error = %v, want ErrCanceled", err)
	}
}

func TestLoadPair(t *testing.T) {
	t.Parallel()

	backingPath := writeFile(t, "backing.wav", wavBytes(t, 8000, 2, 1600, 0.5))
	vocalPath := writeFile(t, "vocal.wav", wavBytes(t, 16000, 1, 1600, 0.5))

	backing, vocal, err := New().LoadPair(context.Background(), backingPath, vocalPath, 8000)
	if err != nil {
		t.Fatalf("LoadPair() error = %v", err)
	}

	if backing.SampleRate() != 8000 || vocal.SampleRate() != 8000 {
		t.Errorf("rates = %d/%d, want 8000/8000", backing.SampleRate(), vocal.SampleRate())
	}
	if backing.NumberOfChannels() != 2 || vocal.NumberOfChannels() != 1 {
		t.Errorf("channels = %d/%d, want 2/1", backing.NumberOfChannels(), vocal.NumberOfChannels())
	}
}

func TestLoadPair_OneFails(t *testing.T) {
	t.Parallel()

	good := writeFile(t, "good.wav", wavBytes(t, 8000, 2, 100, 0.5))
	bad := filepath.Join(t.TempDir(), "missing.wav")

	for _, pair := range [][2]string{{good, bad}, {bad, good}} {
		backing, vocal, err := New().LoadPair(context.Background(), pair[0], pair[1], 8000)
		if backing != nil || vocal != nil {
			t.Errorf("LoadPair(%v) published a partial result", pair)
		}
		if !errors.Is(err, ErrLoad) {
			t.Errorf("LoadPair(%v) error = %v, want %v", pair, err, ErrLoad)
		}
	}
}

func TestLoadPair_FailureCancelsSibling(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	started := make(chan struct{})
	sawCancel := make(chan bool, 1)

	// the failing fetch waits for the slow one, so the cancellation
	// always reaches a fetch that is in flight
	fetch := fetchFunc(func(ctx context.Context, locator string) ([]byte, error) {
		if locator == "bad.wav" {
			<-started
			return nil, boom
		}
		close(started)
		<-ctx.Done()
		sawCancel <- true
		return nil, ctx.Err()
	})

	_, _, err := New(WithFetcher(fetch)).LoadPair(context.Background(), "slow.wav", "bad.wav", 8000)
	if !errors.Is(err, boom) || !errors.Is(err, ErrLoad) {
		t.Errorf("LoadPair() error = %v, want ErrLoad wrapping %v", err, boom)
	}
	if !<-sawCancel {
		t.Error("sibling load was not canceled")
	}
}

func TestFileFetcher_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (FileFetcher{}).Fetch(ctx, "/dev/null"); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want %v", err, context.Canceled)
	}
}

func TestHTTPFetcher_ReadsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "payload")
	}))
	t.Cleanup(srv.Close)

	got, err := HTTPFetcher{Client: srv.Client()}.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Fetch() = %q, want %q", got, "payload")
	}
}
