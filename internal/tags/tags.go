// Package tags loads default image tags and applies them to untagged image
// references in pod documents.
//
// A default tags file holds one fully tagged image reference per line:
//
//	# pinned for the 2.4 release
//	example/rails_hello:2.4.1
//	postgres:16
//
// Blank lines and lines starting with # are ignored.
package tags

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/distribution/reference"
)

var (
	// ErrNotTagged indicates a default tags entry without a tag.
	ErrNotTagged = errors.New("image reference has no tag")

	// ErrDuplicateImage indicates two entries for the same image.
	ErrDuplicateImage = errors.New("duplicate image")
)

// DefaultTags maps familiar image names to the tag used when a pod references
// the image without one.
type DefaultTags struct {
	source string
	tags   map[string]string
}

// Parse reads default tags from r. source names the input in error messages.
func Parse(r io.Reader, source string) (*DefaultTags, error) {
	dt := &DefaultTags{source: source, tags: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		named, err := reference.ParseNormalizedNamed(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", source, lineNo, err)
		}
		tagged, ok := named.(reference.Tagged)
		if !ok {
			return nil, fmt.Errorf("%s:%d: %w: %s", source, lineNo, ErrNotTagged, line)
		}

		name := reference.FamiliarName(named)
		if _, exists := dt.tags[name]; exists {
			return nil, fmt.Errorf("%s:%d: %w: %s", source, lineNo, ErrDuplicateImage, name)
		}
		dt.tags[name] = tagged.Tag()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	return dt, nil
}

// Load reads a default tags file.
func Load(path string) (*DefaultTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Source returns where the tags were loaded from.
func (dt *DefaultTags) Source() string {
	return dt.source
}

// Len returns the number of images with a default tag.
func (dt *DefaultTags) Len() int {
	return len(dt.tags)
}

// Images returns the familiar names of all images with a default tag, sorted.
func (dt *DefaultTags) Images() []string {
	names := make([]string, 0, len(dt.tags))
	for name := range dt.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the default tag for image, which may be given in familiar
// or fully qualified form.
func (dt *DefaultTags) Default(image string) (string, bool) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", false
	}
	tag, ok := dt.tags[reference.FamiliarName(named)]
	return tag, ok
}

// Apply returns image with its default tag added. References that already
// carry a tag or digest, references that fail to parse, and images without a
// default are returned unchanged; the boolean reports whether a tag was added.
func (dt *DefaultTags) Apply(image string) (string, bool) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil || !reference.IsNameOnly(named) {
		return image, false
	}

	tag, ok := dt.tags[reference.FamiliarName(named)]
	if !ok {
		return image, false
	}

	tagged, err := reference.WithTag(named, tag)
	if err != nil {
		return image, false
	}
	return reference.FamiliarString(tagged), true
}
