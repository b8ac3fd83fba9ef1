package media_test

import (
	"context"
	"slices"
	"testing"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/media"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

func testLibrary() media.Library {
	return media.NewLibrary([]interfaces.WPMedia{
		{
			ID:        1234,
			SourceURL: "https://polything.co.uk/wp-content/uploads/2021/03/hero.jpg",
			MediaType: "image",
			AltText:   "Hero",
			Caption:   interfaces.Rendered{Rendered: "<p>A caption</p>\n"},
		},
		{
			ID:        77,
			SourceURL: "https://cdn.example.com/clip.mp4",
			MediaType: "file",
		},
	})
}

func TestConvertToLocalPath(t *testing.T) {
	cases := map[string]string{
		"":                                              "",
		"https://site/wp-content/uploads/2020/01/a.jpg": "/images/2020/01/a.jpg",
		"/wp-content/uploads/b.png":                     "/images/b.png",
		"https://cdn.example.com/c.png":                 "https://cdn.example.com/c.png",
		"/images/already-local.png":                     "/images/already-local.png",
	}
	for input, want := range cases {
		if got := media.ConvertToLocalPath(input); got != want {
			t.Fatalf("ConvertToLocalPath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestConvertToLocalPathRoundTrip(t *testing.T) {
	for _, rest := range []string{"a.jpg", "2019/12/nested/file name.png", "x"} {
		got := media.ConvertToLocalPath("https://site/wp-content/uploads/" + rest)
		if got != "/images/"+rest {
			t.Fatalf("expected /images/%s, got %s", rest, got)
		}
	}
}

func TestIsValidMediaID(t *testing.T) {
	cases := map[string]bool{
		"1234": true,
		"1":    true,
		"0":    false,
		"000":  false,
		"-5":   false,
		"12a":  false,
		"":     false,
		" 12":  false,
	}
	for input, want := range cases {
		if got := media.IsValidMediaID(input); got != want {
			t.Fatalf("IsValidMediaID(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestResolveMediaIDs(t *testing.T) {
	result := media.ResolveMediaIDs([]string{"1234", "999", "77"}, testLibrary())

	if result.Stats != (media.Stats{Total: 3, Resolved: 2, Failed: 1}) {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
	ref, ok := result.Resolved["1234"]
	if !ok {
		t.Fatalf("expected 1234 to resolve")
	}
	if ref.LocalPath != "/images/2021/03/hero.jpg" || ref.AltText != "Hero" || ref.Caption != "A caption" {
		t.Fatalf("unexpected reference %+v", ref)
	}
	if result.Resolved["77"].LocalPath != "https://cdn.example.com/clip.mp4" {
		t.Fatalf("expected external url to pass through, got %+v", result.Resolved["77"])
	}
	if len(result.Errors) != 1 || result.Errors[0].MediaID != "999" || result.Errors[0].Error != media.MissingMediaMessage {
		t.Fatalf("unexpected errors %+v", result.Errors)
	}
}

func TestBatchResolveMediaIDsReportsProgressInOrder(t *testing.T) {
	var calls [][2]int
	result, err := media.BatchResolveMediaIDs(context.Background(), []string{"77", "1", "1234"}, testLibrary(), func(current, total int) {
		calls = append(calls, [2]int{current, total})
	})
	if err != nil {
		t.Fatalf("batch resolve: %v", err)
	}
	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if !slices.Equal(calls, want) {
		t.Fatalf("unexpected progress calls %v", calls)
	}
	if result.Stats.Resolved != 2 || result.Stats.Failed != 1 {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
}

func TestBatchResolveMediaIDsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	result, err := media.BatchResolveMediaIDs(ctx, []string{"77", "1234"}, testLibrary(), func(int, int) {
		calls++
		cancel()
	})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if calls != 1 || len(result.Resolved) != 1 {
		t.Fatalf("expected exactly one item processed, calls=%d resolved=%d", calls, len(result.Resolved))
	}
}

func TestUpdateContentWithResolvedMediaDeepCopies(t *testing.T) {
	rec := content.Record{
		Type:  content.TypeProject,
		Hero:  content.Hero{Image: "1234", Video: "555"},
		Links: &content.Links{Image: "1234", Video: "/images/keep.mp4"},
		SEO:   &content.SEO{Schema: &content.Schema{Image: "77"}},
	}
	resolved := media.ResolveMediaIDs([]string{"1234", "77"}, testLibrary()).Resolved

	updated := media.UpdateContentWithResolvedMedia(rec, resolved)

	if updated.Hero.Image != "/images/2021/03/hero.jpg" || updated.Links.Image != "/images/2021/03/hero.jpg" {
		t.Fatalf("expected resolved paths, got %+v / %+v", updated.Hero, updated.Links)
	}
	if updated.Hero.Video != "555" {
		t.Fatalf("expected unresolved id to stay untouched, got %q", updated.Hero.Video)
	}
	if updated.SEO.Schema.Image != "https://cdn.example.com/clip.mp4" {
		t.Fatalf("unexpected schema image %q", updated.SEO.Schema.Image)
	}
	if rec.Hero.Image != "1234" || rec.Links.Image != "1234" || rec.SEO.Schema.Image != "77" {
		t.Fatalf("input record was mutated: %+v", rec)
	}
}

func TestExtractMediaIDs(t *testing.T) {
	rec := content.Record{
		Hero:  content.Hero{Image: "12", Video: "/images/v.mp4"},
		Links: &content.Links{Image: "12", Video: "40"},
		SEO:   &content.SEO{Schema: &content.Schema{Image: "0"}},
	}
	if got := media.ExtractMediaIDs(rec); !slices.Equal(got, []string{"12", "40"}) {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestSummarize(t *testing.T) {
	report := media.Summarize(media.ResolveMediaIDs([]string{"1234", "2", "3", "77"}, testLibrary()))

	if report.SuccessRate != 50 {
		t.Fatalf("expected 50%% success, got %v", report.SuccessRate)
	}
	if !slices.Equal(report.MissingIDs, []string{"2", "3"}) {
		t.Fatalf("unexpected missing ids %v", report.MissingIDs)
	}
	if got := media.Summarize(media.Result{}).SuccessRate; got != 0 {
		t.Fatalf("expected zero rate for empty result, got %v", got)
	}
}
