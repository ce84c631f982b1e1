package ticket

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator allocates a unique ticket id for a submission.
type IDGenerator func(submitterRef int64) string

// idSuffix returns a short random fragment. Deriving it from a fresh UUID
// keeps ids unique even for two submissions in the same instant.
func idSuffix(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:n])
}

// NewShortCode generates a human-readable ticket code, e.g. "TK-7F3A9C".
// The submitter reference is ignored; the code carries no correlation data.
func NewShortCode(_ int64) string {
	return "TK-" + idSuffix(6)
}

// NewCompoundID generates an id that embeds the submitter reference,
// e.g. "1234567_A91B4C". Useful when moderator-side views must be
// correlated back to the submitting operator at a glance.
func NewCompoundID(submitterRef int64) string {
	return fmt.Sprintf("%d_%s", submitterRef, idSuffix(6))
}

// GeneratorFor selects an id strategy by its configuration name.
// Unknown names fall back to the short code.
func GeneratorFor(strategy string) IDGenerator {
	if strings.EqualFold(strategy, "compound") {
		return NewCompoundID
	}
	return NewShortCode
}
