// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"flag"
	"io"

	"github.com/ik5/karamix/config"
	"github.com/ik5/karamix/mixer"
)

var errUsage = errors.New("usage: karamix [flags] <backing> <vocal>")

type options struct {
	backing     string
	vocal       string
	alignment   mixer.Alignment
	backingGain float64
	vocalGain   float64
	sampleRate  int
	chunkFrames int

	preview bool
	title   string
	outDir  string
	song    string
	upload  bool

	logLevel string
}

func parseFlags(args []string, cfg config.Config, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("karamix", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	offset := fs.Float64("offset-ms", 0, "vocal offset in milliseconds, negative delays the backing track")
	start := fs.Float64("start", 0, "position in the backing track where the recording began, in seconds")
	fs.Float64Var(&o.backingGain, "backing-gain", cfg.BackingGain, "backing track gain, 0 to 2")
	fs.Float64Var(&o.vocalGain, "vocal-gain", cfg.VocalGain, "vocal gain, 0 to 2")
	fs.IntVar(&o.sampleRate, "rate", cfg.SampleRate, "sample rate to mix at")
	fs.IntVar(&o.chunkFrames, "chunk", cfg.ChunkFrames, "frames per encoder chunk")
	fs.BoolVar(&o.preview, "preview", false, "play the mix before exporting")
	fs.StringVar(&o.title, "title", "", "song title used to name the saved file")
	fs.StringVar(&o.outDir, "out", cfg.OutputDir, "directory to save the mix into, empty to skip")
	fs.StringVar(&o.song, "song", "", "song id sent with the upload")
	fs.BoolVar(&o.upload, "upload", false, "upload the mix to KARAMIX_UPLOAD_URL")
	fs.StringVar(&o.logLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, errUsage
	}
	o.backing, o.vocal = fs.Arg(0), fs.Arg(1)

	o.alignment = mixer.RelativeOffset{Millis: *offset}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "start" {
			o.alignment = mixer.RecordingStart{Seconds: *start}
		}
	})

	if o.upload && cfg.UploadURL == "" {
		return nil, errors.New("-upload needs KARAMIX_UPLOAD_URL")
	}
	if o.upload && o.song == "" {
		return nil, errors.New("-upload needs -song")
	}

	return o, nil
}
