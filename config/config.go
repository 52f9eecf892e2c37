// SPDX-License-Identifier: EPL-2.0

// Package config reads runtime settings from KARAMIX_* environment
// variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Audio
	SampleRate  int     // rate both sources are decoded to
	BackingGain float64 // default backing track gain
	VocalGain   float64 // default vocal gain
	ChunkFrames int     // frames per encoder chunk

	// Delivery
	UploadURL   string
	UploadToken string
	HTTPTimeout time.Duration // fetch and upload timeout
	OutputDir   string

	LogLevel string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate:  envInt("KARAMIX_SAMPLE_RATE", 44100),
		BackingGain: envFloat("KARAMIX_BACKING_GAIN", 0.7),
		VocalGain:   envFloat("KARAMIX_VOCAL_GAIN", 1.0),
		ChunkFrames: envInt("KARAMIX_CHUNK_FRAMES", 50000),

		UploadURL:   envStr("KARAMIX_UPLOAD_URL", ""),
		UploadToken: envStr("KARAMIX_UPLOAD_TOKEN", ""),
		HTTPTimeout: time.Duration(envInt("KARAMIX_HTTP_TIMEOUT", 120)) * time.Second,
		OutputDir:   envStr("KARAMIX_OUTPUT_DIR", "."),

		LogLevel: envStr("KARAMIX_LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
