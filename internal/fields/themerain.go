// Package fields maps WordPress theme meta (the themerain_* keys written by
// the source theme) onto the normalised hero and links blocks.
package fields

import (
	"github.com/polything/go-wpmigrate/content"
)

// Mapped is the normalised schema derived from post meta. Links is only set
// for projects.
type Mapped struct {
	Hero  content.Hero   `json:"hero"`
	Links *content.Links `json:"links,omitempty"`
}

// fallback lists meta keys in priority order; the first present, non-nil key
// wins even when its value is empty.
type fallback []string

func (f fallback) lookup(meta map[string]any) string {
	for _, key := range f {
		if value, ok := meta[key]; ok && value != nil {
			return metaString(value)
		}
	}
	return ""
}

var (
	heroTitle           = fallback{"themerain_hero_title", "themerain_page_title"}
	heroSubtitle        = fallback{"themerain_hero_subtitle", "themerain_page_subtitle"}
	heroImage           = fallback{"themerain_hero_image"}
	heroVideo           = fallback{"themerain_hero_video"}
	heroTextColor       = fallback{"themerain_hero_text_color", "themerain_page_text_color"}
	heroBackgroundColor = fallback{"themerain_hero_background_color", "themerain_page_background_color"}

	linkURL   = fallback{"themerain_project_link_url"}
	linkImage = fallback{"themerain_project_link_image"}
	linkVideo = fallback{"themerain_project_link_video"}
)

// MapThemerainFields flattens meta into the hero block and, for projects, the
// links block. A nil meta map yields the same shape with empty values.
func MapThemerainFields(meta map[string]any, t content.Type) Mapped {
	mapped := Mapped{
		Hero: content.Hero{
			Title:           heroTitle.lookup(meta),
			Subtitle:        heroSubtitle.lookup(meta),
			Image:           heroImage.lookup(meta),
			Video:           heroVideo.lookup(meta),
			TextColor:       heroTextColor.lookup(meta),
			BackgroundColor: heroBackgroundColor.lookup(meta),
		},
	}
	if t == content.TypeProject {
		mapped.Links = &content.Links{
			URL:   linkURL.lookup(meta),
			Image: linkImage.lookup(meta),
			Video: linkVideo.lookup(meta),
		}
	}
	return mapped
}

// Apply copies the mapped blocks onto rec and returns the updated copy.
func (m Mapped) Apply(rec content.Record) content.Record {
	out := rec.Clone()
	out.Hero = m.Hero
	out.Links = nil
	if m.Links != nil {
		links := *m.Links
		out.Links = &links
	}
	return out
}

// metaString flattens a meta value. WordPress registers some meta as
// single-item arrays, so the first element of a list is used.
func metaString(value any) string {
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		return content.StringValue(list[0])
	}
	return content.StringValue(value)
}
