// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ik5/karamix/audio"
	"github.com/ik5/karamix/formats/aiff"
	"github.com/ik5/karamix/formats/mp3"
	"github.com/ik5/karamix/formats/vorbis"
	"github.com/ik5/karamix/formats/wav"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// extensions maps file extensions to registry names for streams whose
// header gives nothing away.
var extensions = map[string]string{
	".wav":  "wav",
	".wave": "wav",
	".aif":  "aiff",
	".aiff": "aiff",
	".aifc": "aiff",
	".ogg":  "vorbis",
	".oga":  "vorbis",
	".mp3":  "mp3",
}

// DefaultRegistry knows every format under formats/. MP3 is registered
// last because a frame sync is the weakest signature.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{}, wav.Match)
	r.Register("aiff", aiff.Decoder{}, aiff.Match)
	r.Register("vorbis", vorbis.Decoder{}, vorbis.Match)
	r.Register("mp3", mp3.Decoder{}, mp3.Match)

	return r
}

// Loader turns locators into decoded buffers.
type Loader struct {
	fetcher  Fetcher
	registry *audio.Registry
	log      *zap.Logger
}

type Option func(*Loader)

func WithFetcher(f Fetcher) Option {
	return func(l *Loader) { l.fetcher = f }
}

// WithHTTPClient keeps the default schemes but downloads through client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) { l.fetcher = DefaultFetcher(client) }
}

func WithRegistry(r *audio.Registry) Option {
	return func(l *Loader) { l.registry = r }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		fetcher:  DefaultFetcher(nil),
		registry: DefaultRegistry(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load fetches and decodes locator into a buffer at sampleRate. A source
// at another rate is resampled; a sampleRate of zero keeps the source
// rate.
//
// If ctx ends first the error matches ErrCanceled and the context's own
// error. Every other error matches ErrLoad.
func (l *Loader) Load(ctx context.Context, locator string, sampleRate int) (*audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	began := time.Now()

	data, err := l.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, l.fail(ctx, locator, "fetch", err)
	}

	name, dec, err := l.detect(locator, data)
	if err != nil {
		return nil, l.fail(ctx, locator, "detect", err)
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, l.fail(ctx, locator, "decode", err)
	}
	sourceRate := src.SampleRate()

	if sampleRate > 0 && sourceRate != sampleRate {
		src = audio.NewResampler(src, sampleRate)
	}
	defer src.Close()

	buf, err := audio.ReadAll(ctx, src)
	if err != nil {
		return nil, l.fail(ctx, locator, "decode", err)
	}
	if buf.Length() == 0 {
		return nil, l.fail(ctx, locator, "decode", ErrEmptyAudio)
	}

	l.log.Debug("audio loaded",
		zap.String("locator", locator),
		zap.String("format", name),
		zap.Int("source_rate", sourceRate),
		zap.Int("sample_rate", buf.SampleRate()),
		zap.Int("channels", buf.NumberOfChannels()),
		zap.Float64("seconds", buf.Duration()),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(began)),
	)

	return buf, nil
}

func (l *Loader) fail(ctx context.Context, locator, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		l.log.Debug("load canceled", zap.String("locator", locator), zap.String("stage", stage))
		return canceled(ctxErr)
	}

	return fmt.Errorf("%w: %s %s: %w", ErrLoad, stage, locator, err)
}

func (l *Loader) detect(locator string, data []byte) (string, audio.Decoder, error) {
	header := data[:min(len(data), audio.HeaderSize)]
	if name, dec, ok := l.registry.Detect(header); ok {
		return name, dec, nil
	}

	ext := strings.ToLower(path.Ext(locatorPath(locator)))
	if name, ok := extensions[ext]; ok {
		if dec, ok := l.registry.Get(name); ok {
			return name, dec, nil
		}
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, locator)
}

func locatorPath(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		return u.Path
	}

	return locator
}

// LoadPair loads the backing track and the vocal take concurrently. Either
// both buffers are returned or neither: the first failure cancels the
// other load.
func (l *Loader) LoadPair(ctx context.Context, backingLocator, vocalLocator string, sampleRate int) (backing, vocal *audio.Buffer, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		backing, err = l.Load(gctx, backingLocator, sampleRate)
		return err
	})
	g.Go(func() error {
		var err error
		vocal, err = l.Load(gctx, vocalLocator, sampleRate)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return backing, vocal, nil
}
