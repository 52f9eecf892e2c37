// SPDX-License-Identifier: EPL-2.0

// Command karamix mixes a backing track with a vocal take and saves or
// uploads the result as a WAV file.
//
//	karamix -start 12.5 -title "My Song" backing.mp3 https://host/take.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/karamix/config"
	"github.com/ik5/karamix/internal/logging"
	"github.com/ik5/karamix/loader"
	"github.com/ik5/karamix/mixer"
	"github.com/ik5/karamix/output"
	"github.com/ik5/karamix/session"
	"github.com/ik5/karamix/upload"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg := config.Load()

	opts, err := parseFlags(args, cfg, os.Stderr)
	if err != nil {
		return err
	}

	log, err := logging.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	progress := newRenderProgress(os.Stderr)

	sessOpts := []session.Option{
		session.WithLogger(log),
		session.WithSampleRate(opts.sampleRate),
		session.WithMixerOptions(
			mixer.WithEncodeChunk(opts.chunkFrames),
			mixer.WithProgress(progress.update),
		),
	}
	if opts.preview {
		sessOpts = append(sessOpts, session.WithDeviceOpener(output.Opener()))
	}

	s := session.New(loader.New(loader.WithHTTPClient(client), loader.WithLogger(log)), sessOpts...)
	defer s.Close()

	s.Open(opts.backing, opts.vocal)
	if err := s.Wait(ctx); err != nil {
		return err
	}

	if opts.preview {
		if err := preview(ctx, s, opts, log); err != nil {
			return err
		}
	}

	file, err := s.Export(ctx, opts.alignment, opts.backingGain, opts.vocalGain)
	progress.finish()
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		path, err := upload.FileSaver{Dir: opts.outDir, Log: log}.Save(ctx, opts.title, file)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}

	if opts.upload {
		u := upload.NewHTTPUploader(cfg.UploadURL,
			upload.WithToken(cfg.UploadToken),
			upload.WithHTTPClient(client),
			upload.WithLogger(log),
		)
		if err := u.Upload(ctx, opts.song, file); err != nil {
			return err
		}
	}

	return nil
}

// preview plays the mix until it ends on its own or the user interrupts.
func preview(ctx context.Context, s *session.Session, opts *options, log *zap.Logger) error {
	if err := s.Preview(opts.alignment, opts.backingGain, opts.vocalGain); err != nil {
		return err
	}
	log.Info("previewing, press Ctrl-C to stop")

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for s.State() == session.Previewing {
		select {
		case <-ctx.Done():
			s.StopPreview()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}
