package interfaces

// WPMedia mirrors the subset of the WordPress REST media payload
// (/wp-json/wp/v2/media) the migration consumes.
type WPMedia struct {
	ID        int      `json:"id"`
	SourceURL string   `json:"source_url"`
	MediaType string   `json:"media_type"`
	MimeType  string   `json:"mime_type,omitempty"`
	AltText   string   `json:"alt_text"`
	Caption   Rendered `json:"caption"`
	Title     Rendered `json:"title"`
}
