// Package i18n loads embedded locale catalogs and resolves request languages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedCatalogFS embed.FS

// Bundle contains all locale catalogs loaded from disk.
type Bundle struct {
	locales map[string]map[string]string
	tags    []language.Tag
	matcher language.Matcher
}

var defaultBundle = mustLoadEmbedded()

// Default returns the process-wide embedded catalog bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads catalog files embedded in this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads locale catalogs named locales/<tag>.yaml from catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]map[string]string{}}
	for _, path := range paths {
		data, err := fs.ReadFile(catalogFS, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var messages map[string]string
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		locale := strings.TrimSuffix(strings.TrimPrefix(path, "locales/"), ".yaml")
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		bundle.locales[tag.String()] = messages
	}

	if _, ok := bundle.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is missing", BaseLocale)
	}

	// The base locale goes first so the matcher falls back to it.
	bundle.tags = append(bundle.tags, language.MustParse(BaseLocale))
	for locale := range bundle.locales {
		if locale == BaseLocale {
			continue
		}
		bundle.tags = append(bundle.tags, language.MustParse(locale))
	}
	sort.Slice(bundle.tags[1:], func(i, j int) bool {
		return bundle.tags[i+1].String() < bundle.tags[j+1].String()
	})
	bundle.matcher = language.NewMatcher(bundle.tags)
	return bundle, nil
}

func mustLoadEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(fmt.Sprintf("load embedded locale catalogs: %v", err))
	}
	return bundle
}

// SupportedTags returns the bundle's locale tags, base locale first.
func (b *Bundle) SupportedTags() []language.Tag {
	if b == nil {
		return nil
	}
	out := make([]language.Tag, len(b.tags))
	copy(out, b.tags)
	return out
}

// Match resolves the closest supported tag for the preferred tags.
func (b *Bundle) Match(preferred ...language.Tag) language.Tag {
	if b == nil || b.matcher == nil {
		return language.MustParse(BaseLocale)
	}
	_, index, _ := b.matcher.Match(preferred...)
	return b.tags[index]
}

// MatchAcceptLanguage resolves a supported tag from an Accept-Language header.
func (b *Bundle) MatchAcceptLanguage(header string) language.Tag {
	header = strings.TrimSpace(header)
	if header == "" {
		return b.Match()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return b.Match()
	}
	return b.Match(tags...)
}

// Localizer resolves message keys for one locale with base-locale fallback.
type Localizer struct {
	bundle *Bundle
	tag    language.Tag
}

// Localizer returns a localizer for the provided tag.
func (b *Bundle) Localizer(tag language.Tag) Localizer {
	return Localizer{bundle: b, tag: b.Match(tag)}
}

// Tag returns the resolved locale tag.
func (l Localizer) Tag() language.Tag {
	return l.tag
}

// T returns the translated message for key, formatted with args.
// Missing keys fall back to the base locale, then to the key itself.
func (l Localizer) T(key string, args ...any) string {
	message := l.lookup(key)
	if message == "" {
		message = key
	}
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

func (l Localizer) lookup(key string) string {
	if l.bundle == nil {
		return ""
	}
	if messages, ok := l.bundle.locales[l.tag.String()]; ok {
		if message, ok := messages[key]; ok {
			return message
		}
	}
	if messages, ok := l.bundle.locales[BaseLocale]; ok {
		return messages[key]
	}
	return ""
}
