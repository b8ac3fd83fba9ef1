package media

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

// Reference normalises a WordPress media item for the static site. It is
// created per resolution call and never mutated afterwards.
type Reference struct {
	ID          string `json:"id"`
	OriginalURL string `json:"original_url"`
	LocalPath   string `json:"local_path"`
	MediaType   string `json:"media_type,omitempty"`
	AltText     string `json:"alt_text,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Library indexes WordPress media payloads by their string ID.
type Library map[string]interfaces.WPMedia

// NewLibrary indexes the supplied media items. Later duplicates win.
func NewLibrary(items []interfaces.WPMedia) Library {
	lib := make(Library, len(items))
	for _, item := range items {
		lib[strconv.Itoa(item.ID)] = item
	}
	return lib
}

const uploadsMarker = "/wp-content/uploads/"

// ConvertToLocalPath maps a WordPress upload URL to its /images/ path. URLs
// outside the uploads tree are returned unchanged.
func ConvertToLocalPath(url string) string {
	if url == "" {
		return ""
	}
	idx := strings.Index(url, uploadsMarker)
	if idx < 0 {
		return url
	}
	return "/images/" + url[idx+len(uploadsMarker):]
}

var mediaIDPattern = regexp.MustCompile(`^\d+$`)

// IsValidMediaID reports whether value is a positive decimal media ID.
func IsValidMediaID(value string) bool {
	if !mediaIDPattern.MatchString(value) {
		return false
	}
	id, err := strconv.ParseUint(value, 10, 64)
	return err == nil && id > 0
}

// NewReference builds a Reference from a WordPress media payload.
func NewReference(id string, item interfaces.WPMedia) Reference {
	return Reference{
		ID:          id,
		OriginalURL: item.SourceURL,
		LocalPath:   ConvertToLocalPath(item.SourceURL),
		MediaType:   item.MediaType,
		AltText:     item.AltText,
		Caption:     stripTags(item.Caption.Rendered),
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(value string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(value, ""))
}
