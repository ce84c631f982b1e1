package ticket

// ContentKind classifies the submitted content for preview purposes when it
// carries no text or caption.
type ContentKind string

const (
	KindNone     ContentKind = ""
	KindText     ContentKind = "text"
	KindPhoto    ContentKind = "photo"
	KindVoice    ContentKind = "voice"
	KindDocument ContentKind = "document"
	KindAudio    ContentKind = "audio"
	KindVideo     ContentKind = "video"
	KindAnimation ContentKind = "animation"
	KindSticker   ContentKind = "sticker"
)

// TruncationMarker is appended to previews cut at the limit.
const TruncationMarker = "..."

// BuildPreview produces the human-readable summary stored on a ticket.
// Text (or caption) wins over the media placeholder; anything longer than
// limit runes is cut to exactly limit runes plus the truncation marker.
func BuildPreview(text string, kind ContentKind, limit int) string {
	if text != "" {
		runes := []rune(text)
		if len(runes) > limit {
			return string(runes[:limit]) + TruncationMarker
		}
		return text
	}

	switch kind {
	case KindPhoto:
		return "📷 [Photo]"
	case KindVoice:
		return "🎤 [Voice note]"
	default:
		return "📦 [Attachment]"
	}
}
