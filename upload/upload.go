// SPDX-License-Identifier: EPL-2.0

package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ik5/karamix/mixer"
	"go.uber.org/zap"
)

// Form field names expected by the recordings endpoint.
const (
	FieldSong  = "song"
	FieldAudio = "audio_file"
)

// Uploader delivers an exported mix somewhere.
type Uploader interface {
	Upload(ctx context.Context, songID string, file *mixer.EncodedFile) error
}

// HTTPUploader posts the mix as multipart/form-data.
type HTTPUploader struct {
	url    string
	token  string
	client *http.Client
	now    func() time.Time
	log    *zap.Logger
}

type Option func(*HTTPUploader)

// WithToken sends the token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(u *HTTPUploader) { u.token = token }
}

func WithHTTPClient(c *http.Client) Option {
	return func(u *HTTPUploader) {
		if c != nil {
			u.client = c
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(u *HTTPUploader) {
		if log != nil {
			u.log = log
		}
	}
}

// WithClock replaces the clock used to name uploaded files.
func WithClock(now func() time.Time) Option {
	return func(u *HTTPUploader) {
		if now != nil {
			u.now = now
		}
	}
}

func NewHTTPUploader(url string, opts ...Option) *HTTPUploader {
	u := &HTTPUploader{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Minute},
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Filename is the name given to the audio part, mixed-<unix ms>.wav.
func (u *HTTPUploader) Filename() string {
	return fmt.Sprintf("mixed-%d.wav", u.now().UnixMilli())
}

func (u *HTTPUploader) Upload(ctx context.Context, songID string, file *mixer.EncodedFile) error {
	switch {
	case u.url == "":
		return ErrNoURL
	case songID == "":
		return ErrNoSongID
	case file == nil || len(file.Data) == 0:
		return ErrNoFile
	}

	body, contentType, err := u.form(songID, file)
	if err != nil {
		return &Error{URL: u.url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, body)
	if err != nil {
		return &Error{URL: u.url, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return &Error{URL: u.url, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{URL: u.url, StatusCode: resp.StatusCode}
	}

	u.log.Info("mix uploaded",
		zap.String("song", songID),
		zap.Int("bytes", len(file.Data)),
		zap.Duration("took", time.Since(start)),
	)

	return nil
}

func (u *HTTPUploader) form(songID string, file *mixer.EncodedFile) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField(FieldSong, songID); err != nil {
		return nil, "", err
	}

	part, err := w.CreateFormFile(FieldAudio, u.Filename())
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return body, w.FormDataContentType(), nil
}
