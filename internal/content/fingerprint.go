package content

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"educraft-session-service/internal/domain"
)

const fieldSeparator = "\x1f"

// Fingerprint identifies a question for uniqueness checks. Text and options are
// normalized and options are sorted, so a reordered option set collides while
// any wording change does not.
func Fingerprint(q domain.Question) string {
	options := make([]string, len(q.Options))
	for i, opt := range q.Options {
		options[i] = normalize(opt)
	}
	sort.Strings(options)

	h := sha256.New()
	h.Write([]byte(normalize(q.Question)))
	for _, opt := range options {
		h.Write([]byte(fieldSeparator))
		h.Write([]byte(opt))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
