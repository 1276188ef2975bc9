package entity

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// maxSlugLength matches the width of the slug column.
const maxSlugLength = 255

// maxTagLength bounds a single tag value.
const maxTagLength = 64

// Slug is a validated, URL-safe article identifier.
// The zero value is not a valid slug; build one with NewSlug or Slugify.
type Slug struct {
	value string
}

// NewSlug validates raw and returns it as a Slug.
// A slug consists of lower-case ASCII letters, digits and single hyphens,
// and must not start or end with a hyphen.
func NewSlug(raw string) (Slug, error) {
	if raw == "" {
		return Slug{}, &ValidationError{Field: "slug", Message: "slug is required"}
	}
	if len(raw) > maxSlugLength {
		return Slug{}, &ValidationError{
			Field:   "slug",
			Message: fmt.Sprintf("slug must not exceed %d characters", maxSlugLength),
		}
	}
	if raw[0] == '-' || raw[len(raw)-1] == '-' {
		return Slug{}, &ValidationError{Field: "slug", Message: "slug must not start or end with a hyphen"}
	}
	if strings.Contains(raw, "--") {
		return Slug{}, &ValidationError{Field: "slug", Message: "slug must not contain consecutive hyphens"}
	}
	for _, r := range raw {
		if !isSlugRune(r) {
			return Slug{}, &ValidationError{
				Field:   "slug",
				Message: fmt.Sprintf("slug contains invalid character %q", r),
			}
		}
	}
	return Slug{value: raw}, nil
}

// Slugify derives a Slug from free text such as an article title.
// Runs of characters outside [a-z0-9] collapse into a single hyphen.
func Slugify(text string) (Slug, error) {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(text) {
		if isSlugRune(r) && r != '-' {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			pendingHyphen = true
		}
	}
	out := b.String()
	if len(out) > maxSlugLength {
		out = strings.TrimRight(out[:maxSlugLength], "-")
	}
	return NewSlug(out)
}

// String returns the slug value.
func (s Slug) String() string {
	return s.value
}

// IsZero reports whether s was never assigned.
func (s Slug) IsZero() bool {
	return s.value == ""
}

// WithSuffix returns a new slug with "-suffix" appended, trimmed to fit.
func (s Slug) WithSuffix(suffix string) (Slug, error) {
	base := s.value
	room := maxSlugLength - len(suffix) - 1
	if room < 1 {
		return Slug{}, &ValidationError{
			Field:   "slug",
			Message: fmt.Sprintf("suffix must not exceed %d characters", maxSlugLength-2),
		}
	}
	if len(base) > room {
		base = strings.TrimRight(base[:room], "-")
	}
	return NewSlug(base + "-" + suffix)
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
}

// TagSet is an unordered set of tag values.
type TagSet struct {
	values map[string]struct{}
}

// NewTagSet builds a TagSet. Values are trimmed; empty values are dropped and
// duplicates collapse into one entry.
func NewTagSet(tags ...string) TagSet {
	set := TagSet{values: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set.values[t] = struct{}{}
	}
	return set
}

// Len returns the number of distinct tags.
func (s TagSet) Len() int {
	return len(s.values)
}

// Contains reports whether tag is in the set.
func (s TagSet) Contains(tag string) bool {
	_, ok := s.values[tag]
	return ok
}

// Values returns the tags in ascending order.
func (s TagSet) Values() []string {
	out := make([]string, 0, len(s.values))
	for t := range s.values {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// String renders the set as "[a b c]".
func (s TagSet) String() string {
	return fmt.Sprint(s.Values())
}

// Validate checks every tag against the length limit.
func (s TagSet) Validate() error {
	for _, t := range s.Values() {
		if len(t) > maxTagLength {
			return &ValidationError{
				Field:   "tags",
				Message: fmt.Sprintf("tag %q exceeds %d characters", t, maxTagLength),
			}
		}
	}
	return nil
}
