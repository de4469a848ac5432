// Package log provides the PixelPolish logger, built on top of the standard
// slog package.
//
// Snapshots carry page URLs and visible text. The Handler in this package
// keeps that material readable in log output:
//   - Query parameters that look like credentials (token, key, session, ...)
//     are replaced with a mask in any URL-valued attribute
//   - data: URIs are reduced to their media type
//   - Long string values are truncated to MaxValueLength runes
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Info("snapshot loaded",
//	    "url", "https://example.com/?token=abc", // logged as ?token=***
//	    "elements", 412,
//	)
//	slog.SetDefault(logger)
package log
