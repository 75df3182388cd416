package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxPathLength keeps generated paths usable on legacy Windows APIs, which the
// game tooling still relies on.
const MaxPathLength = 260

const maxStemLength = 120

// SafeStem converts a file name into an ASCII-only stem made of letters,
// digits, '_' and '-'. Accented letters are folded to their base letter; any
// other character becomes '_'. When nothing usable remains the stem falls
// back to media_NNN using index.
func SafeStem(name string, index int) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), base)
	if err != nil {
		folded = base
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastUnderscore := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	stem := strings.Trim(b.String(), "_")
	if len(stem) > maxStemLength {
		stem = strings.TrimRight(stem[:maxStemLength], "_")
	}
	if stem == "" {
		return fmt.Sprintf("media_%03d", index)
	}
	return stem
}

// DisplayTitle renders a stem as a human-friendly title for summaries.
func DisplayTitle(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool { return r == '_' || r == '-' })
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// TrimToPathLength shortens the stem of path so the full path fits within
// limit bytes. The directory and extension are preserved.
func TrimToPathLength(path string, limit int) string {
	if limit <= 0 || len(path) <= limit {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	overflow := len(path) - limit
	if overflow >= len(stem) {
		stem = stem[:1]
	} else {
		stem = stem[:len(stem)-overflow]
	}
	return filepath.Join(dir, stem+ext)
}

// Reserver hands out output paths that neither exist on disk nor were handed
// out earlier, so two inputs with the same stem in one batch never collide.
type Reserver struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewReserver returns an empty Reserver.
func NewReserver() *Reserver {
	return &Reserver{reserved: make(map[string]struct{})}
}

// Reserve returns path, or path with a _N suffix on the stem, whichever is
// free first.
func (r *Reserver) Reserve(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for n := 1; r.taken(candidate); n++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	r.reserved[candidate] = struct{}{}
	return candidate
}

// Release forgets a reservation, typically after its task failed and the
// partial output was removed.
func (r *Reserver) Release(path string) {
	r.mu.Lock()
	delete(r.reserved, path)
	r.mu.Unlock()
}

func (r *Reserver) taken(path string) bool {
	if _, ok := r.reserved[path]; ok {
		return true
	}
	_, err := os.Lstat(path)
	return err == nil
}
