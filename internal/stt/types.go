package stt

import "strings"

// Request carries one audio clip to a provider adapter. Audio bytes are
// opaque and never mutated by an adapter.
type Request struct {
	Audio    []byte
	MimeType string
}

// Result is a successful transcription. Transcript is non-empty after
// trimming; adapters return KindEmptyTranscript otherwise.
type Result struct {
	Provider   string `json:"provider"`
	Transcript string `json:"transcript"`
}

// NormalizeMime strips codec parameters from a declared MIME type, e.g.
// "audio/webm;codecs=opus" becomes "audio/webm". An empty declaration
// falls back to audio/webm, the browser recorder default.
func NormalizeMime(mime string) string {
	mime = strings.TrimSpace(mime)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" {
		return "audio/webm"
	}
	return strings.ToLower(mime)
}

// extensionForMime picks a filename extension for providers that want a
// named file part in a multipart upload.
func extensionForMime(mime string) string {
	switch NormalizeMime(mime) {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "m4a"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/ogg":
		return "ogg"
	case "audio/flac":
		return "flac"
	default:
		return "webm"
	}
}
