package storage

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeName = regexp.MustCompile(`[^\w.\-]+`)

// SafeFileName folds accents away (NFKD, marks dropped) and replaces anything
// outside [A-Za-z0-9_.-] with an underscore.
func SafeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = unsafeName.ReplaceAllString(folded, "_")
	folded = strings.Trim(folded, "_")
	if folded == "" || strings.Trim(folded, ".") == "" {
		return "file"
	}
	if len(folded) > 120 {
		ext := path.Ext(folded)
		if len(ext) > 16 {
			ext = ""
		}
		folded = folded[:120-len(ext)] + ext
	}
	return folded
}

// BuildObjectKey joins the non-empty parts and appends
// <unixMillis>-<token>_<safe name>, so two uploads never collide.
func BuildObjectKey(parts []string, filename string, now time.Time) string {
	segs := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			segs = append(segs, p)
		}
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	segs = append(segs, strconv.FormatInt(now.UnixMilli(), 10)+"-"+token+"_"+SafeFileName(filename))
	return strings.Join(segs, "/")
}

// Ext returns the lower-cased extension without its dot.
func Ext(filename string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(strings.TrimSpace(filename))), ".")
}
