package mdx

import (
	"strings"
	"testing"
)

func TestConvertRejectsEmptyInput(t *testing.T) {
	for _, input := range []string{"", "  \n\t"} {
		result := Convert(input, DefaultOptions())
		if result.Content != "" || len(result.MediaReferences) != 0 {
			t.Fatalf("expected empty output for %q, got %+v", input, result)
		}
		if len(result.Errors) != 1 || result.Errors[0] != "Invalid HTML content provided" {
			t.Fatalf("unexpected errors %v", result.Errors)
		}
	}
}

func TestConvertHeadingAndParagraph(t *testing.T) {
	result := Convert("<h2>T</h2><p>body</p>", DefaultOptions())

	if result.Content != "## T\n\nbody" {
		t.Fatalf("unexpected content %q", result.Content)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("unexpected diagnostics %+v", result)
	}
}

func TestConvertInlineFormatting(t *testing.T) {
	html := `<p>Some <strong>bold</strong>, <b>b</b>, <em>em</em>, <i>i</i> and <code>x := 1</code> with <a href="https://example.com" rel="noopener"><strong>a link</strong></a>.</p>`

	result := Convert(html, DefaultOptions())

	want := "Some **bold**, **b**, *em*, *i* and `x := 1` with [**a link**](https://example.com)."
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nwant\n%q", result.Content, want)
	}
}

func TestConvertListsKeepDashForOrderedListsByDefault(t *testing.T) {
	html := `<ol><li>One</li><li>Two</li></ol><ul><li>A</li></ul>`

	result := Convert(html, DefaultOptions())

	if result.Content != "- One\n- Two\n\n- A" {
		t.Fatalf("unexpected content %q", result.Content)
	}
}

func TestConvertNumbersOrderedListsWhenEnabled(t *testing.T) {
	opts := DefaultOptions()
	opts.NumberOrderedLists = true

	result := Convert(`<ol><li>One</li><li>Two</li></ol><ul><li>A</li></ul>`, opts)

	if result.Content != "1. One\n2. Two\n\n- A" {
		t.Fatalf("unexpected content %q", result.Content)
	}
}

func TestConvertBlockquote(t *testing.T) {
	result := Convert("<blockquote><p>First</p><p>Second</p></blockquote>", DefaultOptions())

	if result.Content != "> First\n>\n> Second" {
		t.Fatalf("unexpected content %q", result.Content)
	}

	bare := Convert("<blockquote>Quoted</blockquote>", DefaultOptions())
	if bare.Content != "> Quoted" {
		t.Fatalf("unexpected bare blockquote %q", bare.Content)
	}
}

func TestConvertCodeBlockIsFencedAndProtected(t *testing.T) {
	html := `<pre class="wp-block-code"><code class="language-go">if a &lt; b &amp;&amp; c {
	return &quot;**x**&quot;
}
</code></pre><p>after</p>`

	result := Convert(html, DefaultOptions())

	want := "```go\nif a < b && c {\n\treturn \"**x**\"\n}\n```\n\nafter"
	if result.Content != want {
		t.Fatalf("unexpected content:\n%q\nwant\n%q", result.Content, want)
	}
}

func TestConvertExtractsAndRewritesMedia(t *testing.T) {
	html := `<figure class="wp-block-image"><img src="https://polything.co.uk/wp-content/uploads/2020/05/a.jpg" alt="A"></figure>` +
		`<video src="https://cdn.example.com/v.mp4"></video>`

	result := Convert(html, DefaultOptions())

	if len(result.MediaReferences) != 2 {
		t.Fatalf("expected two media references, got %+v", result.MediaReferences)
	}
	first := result.MediaReferences[0]
	if first.Kind != "img" || first.LocalPath != "/images/2020/05/a.jpg" {
		t.Fatalf("unexpected first reference %+v", first)
	}
	if result.MediaReferences[1].LocalPath != "https://cdn.example.com/v.mp4" {
		t.Fatalf("expected external url recorded unchanged, got %+v", result.MediaReferences[1])
	}
	if !strings.Contains(result.Content, `<img src="/images/2020/05/a.jpg" alt="A" />`) {
		t.Fatalf("expected rewritten self-closing img, got %q", result.Content)
	}
	if strings.Contains(result.Content, "figure") {
		t.Fatalf("expected figure wrapper stripped, got %q", result.Content)
	}
}

func TestConvertPreservesEmbedsVerbatim(t *testing.T) {
	iframe := `<iframe src="https://www.youtube.com/embed/x" title="<b>clip</b>" allowfullscreen></iframe>`
	html := "<p>Watch</p>" + iframe + "<p>Done &amp; dusted</p>"

	result := Convert(html, DefaultOptions())

	if result.Content != "Watch\n\n"+iframe+"\n\nDone & dusted" {
		t.Fatalf("unexpected content %q", result.Content)
	}
}

func TestConvertStripsEmbedsWhenNotPreserved(t *testing.T) {
	opts := DefaultOptions()
	opts.PreserveEmbeds = false
	opts.AllowedTags = []string{"img"}

	result := Convert(`<p>a</p><iframe src="x"></iframe>`, opts)

	if result.Content != "a" {
		t.Fatalf("unexpected content %q", result.Content)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "Removed unsupported <iframe> markup" {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
}

func TestConvertKeepsEscapedMarkupEscaped(t *testing.T) {
	result := Convert(`<p>Use &lt;div&gt; wrappers &nbsp;<span class="x">here</span></p>`, DefaultOptions())

	if !strings.HasPrefix(result.Content, "Use &lt;div&gt; wrappers") || !strings.HasSuffix(result.Content, "here") {
		t.Fatalf("unexpected content %q", result.Content)
	}
	if strings.Contains(result.Content, "<div>") || strings.Contains(result.Content, "span") {
		t.Fatalf("expected no raw tags, got %q", result.Content)
	}
	if check := Validate(result.Content); !check.Valid {
		t.Fatalf("expected escaped text to validate, got %+v", check)
	}
}

func TestConvertKeepsVideoAsHTML(t *testing.T) {
	result := Convert(`<p>Clip</p><video controls><source src="https://polything.co.uk/wp-content/uploads/2021/01/v.mp4" type="video/mp4"></video>`, DefaultOptions())

	if !strings.Contains(result.Content, `<source src="/images/2021/01/v.mp4" type="video/mp4"`) {
		t.Fatalf("expected rewritten source tag, got %q", result.Content)
	}
	if !strings.HasPrefix(result.Content, "Clip\n\n<video controls=\"\">") {
		t.Fatalf("expected video kept as its own block, got %q", result.Content)
	}
}

func TestConvertRemovesScriptBlocks(t *testing.T) {
	result := Convert(`<p>x</p><script>alert("hi")</script>`, DefaultOptions())

	if result.Content != "x" {
		t.Fatalf("unexpected content %q", result.Content)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "Removed unsupported <script> markup" {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
}

func TestConvertStripsWordPressArtifacts(t *testing.T) {
	html := "<!-- wp:heading --><h3 class=\"wp-block-heading\">Hi</h3><!-- /wp:heading -->\n\n\n\n<p data-x=\"1\">there<br>friend</p>"

	result := Convert(html, DefaultOptions())

	if result.Content != "### Hi\n\nthere\nfriend" {
		t.Fatalf("unexpected content %q", result.Content)
	}
}

func TestConvertedOutputPassesBodyValidation(t *testing.T) {
	html := `<h2>Intro</h2><p>Some <strong>bold</strong> text.</p><h3>More</h3><pre><code>a * b</code></pre><ul><li><em>x</em></li></ul>`

	converted := Convert(html, DefaultOptions())
	check := Validate(converted.Content)

	if !check.Valid || len(check.Warnings) != 0 {
		t.Fatalf("expected clean body, got %+v for %q", check, converted.Content)
	}
}
