package interfaces

import "encoding/json"

// Rendered wraps WordPress fields exposed as {"rendered": "..."}.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// WPPost mirrors the WordPress REST payload shared by posts, pages and the
// theme's project post type.
type WPPost struct {
	ID          int            `json:"id"`
	Date        string         `json:"date"`
	DateGMT     string         `json:"date_gmt"`
	Modified    string         `json:"modified"`
	ModifiedGMT string         `json:"modified_gmt"`
	Slug        string         `json:"slug"`
	Status      string         `json:"status"`
	Type        string         `json:"type"`
	Link        string         `json:"link"`
	Title       Rendered       `json:"title"`
	Content     Rendered       `json:"content"`
	Excerpt     Rendered       `json:"excerpt"`
	Author      int            `json:"author"`
	Sticky      bool           `json:"sticky"`
	Categories  []int          `json:"categories"`
	Tags        []int          `json:"tags"`
	Meta        map[string]any `json:"meta"`
}

// UnmarshalJSON tolerates WordPress installs that serialise an empty meta
// object as an empty array.
func (p *WPPost) UnmarshalJSON(data []byte) error {
	type alias WPPost
	var raw struct {
		alias
		Meta json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = WPPost(raw.alias)
	p.Meta = nil
	if len(raw.Meta) == 0 || string(raw.Meta) == "[]" || string(raw.Meta) == "null" {
		return nil
	}
	meta := map[string]any{}
	if err := json.Unmarshal(raw.Meta, &meta); err != nil {
		return err
	}
	p.Meta = meta
	return nil
}
