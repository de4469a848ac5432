// Package config provides configuration structures and utilities for
// PixelPolish. It defines engine options, batch and report settings, and the
// optional .pixelpolish YAML file with per-page profiles.
package config
