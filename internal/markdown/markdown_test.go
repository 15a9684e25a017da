package markdown

import (
	"strings"
	"testing"
)

func TestRender_basics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"h1", "# Title", "<h1>Title</h1>"},
		{"h3", "### Deep", "<h3>Deep</h3>"},
		{"four hashes is text", "#### Deeper", "<p>#### Deeper</p>"},
		{"no space is text", "#tag", "<p>#tag</p>"},
		{"list", "- a\n- b", "<ul>\n<li>a</li>\n<li>b</li>\n</ul>"},
		{"inline code", "`x`", "<p><code>x</code></p>"},
		{"code escaped", "`<b>`", "<p><code>&lt;b&gt;</code></p>"},
		{"link", "see [docs](https://example.com/?a=1&b=2)", `<p>see <a href="https://example.com/?a=1&amp;b=2">docs</a></p>`},
		{"javascript link", "[x](javascript:alert(1)", `<p><a href="#">x</a></p>`},
		{"escapes text", `5 > 3 & "q" 'a'`, "<p>5 &gt; 3 &amp; &quot;q&quot; &#39;a&#39;</p>"},
		{"blank closes list", "- a\n\n- b", "<ul>\n<li>a</li>\n</ul>\n<ul>\n<li>b</li>\n</ul>"},
		{"text closes list", "- a\nafter", "<ul>\n<li>a</li>\n</ul>\n<p>after</p>"},
		{"crlf", "# A\r\ntext", "<h1>A</h1>\n<p>text</p>"},
		{"empty", "   \n\n", ""},
		{"nested plain items stay in list", "- a\n  - b", "<ul>\n<li>a</li>\n<li>b</li>\n</ul>"},
		{"heading inline", "## Use `go test`", "<h2>Use <code>go test</code></h2>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.in); got != tt.want {
				t.Errorf("Render(%q)\n got: %q\nwant: %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRender_commitRecord(t *testing.T) {
	in := strings.Join([]string{
		"## Commits",
		"",
		"- `Fix <script> escaping`",
		"  - Hash: `abc1234`",
		"  - Author: Ada Lovelace",
		"  - Time: 2025-01-02T03:04:05Z",
	}, "\n")
	got := Render(in)

	if strings.Count(got, `<div class="commit-list">`) != 1 {
		t.Fatalf("expected one commit container:\n%s", got)
	}
	for _, want := range []string{
		"<h2>Commits</h2>",
		`<p class="commit-message">Fix &lt;script&gt; escaping</p>`,
		`<code class="commit-hash">abc1234</code>`,
		`<dd class="commit-author">Ada Lovelace</dd>`,
		`<time datetime="2025-01-02T03:04:05Z">2025-01-02T03:04:05Z</time>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
	if strings.Contains(got, "<li>") {
		t.Errorf("commit rendered as a generic list item:\n%s", got)
	}
}

func TestRender_commitRunSpansBlankLines(t *testing.T) {
	in := "- `one`\n  - Hash: `1`\n\n- `two`\n  - Hash: `2`\n"
	got := Render(in)
	if n := strings.Count(got, `<div class="commit-list">`); n != 1 {
		t.Errorf("containers = %d, want 1:\n%s", n, got)
	}
	if n := strings.Count(got, `<article class="commit">`); n != 2 {
		t.Errorf("records = %d, want 2:\n%s", n, got)
	}
}

func TestRender_commitDetectedByMetadata(t *testing.T) {
	got := Render("- plain subject [link](/x)\n  - Author: Bob")
	if !strings.Contains(got, `<p class="commit-message">plain subject <a href="/x">link</a></p>`) {
		t.Errorf("header without backticks not recognised:\n%s", got)
	}
}

func TestRender_commitTolerance(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{
			name:    "no metadata",
			in:      "- `lonely commit`",
			want:    []string{`<p class="commit-message">lonely commit</p>`},
			notWant: []string{"<dl"},
		},
		{
			name:    "unknown keys ignored",
			in:      "- `c`\n  - Reviewer: Eve\n  - Hash: `h`",
			want:    []string{`<code class="commit-hash">h</code>`},
			notWant: []string{"Reviewer", "Eve"},
		},
		{
			name: "followed by ordinary items",
			in:   "- `c`\n  - Hash: `h`\n- ordinary\n- items",
			want: []string{
				`<article class="commit">`,
				"</div>\n<ul>\n<li>ordinary</li>\n<li>items</li>\n</ul>",
			},
		},
		{
			name: "followed by paragraph",
			in:   "- `c`\nplain text",
			want: []string{"</div>\n<p>plain text</p>"},
		},
		{
			name:    "lowercase keys are not metadata",
			in:      "- subject\n  - hash: abc",
			want:    []string{"<ul>\n<li>subject</li>\n<li>hash: abc</li>\n</ul>"},
			notWant: []string{"commit"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.in)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("unexpected %q in\n%s", w, got)
				}
			}
		})
	}
}

func TestRender_fallbackOnPanic(t *testing.T) {
	in := "# Title\n- item <b>\ntext"
	got := render(in, func(string) string { panic("boom") })
	want := "<h1>Title</h1>\n<p>- item &lt;b&gt;</p>\n<p>text</p>"
	if got != want {
		t.Errorf("fallback\n got: %q\nwant: %q", got, want)
	}
}

func TestRender_neverPanics(t *testing.T) {
	inputs := []string{
		"- `",
		"  - Hash:",
		"- ``\n  - Time:\n\n\n  - Author: x",
		"[](",
		"\x00\xff",
		strings.Repeat("- `a`\n  - Hash: b\n", 50),
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Render(%q) panicked: %v", in, r)
				}
			}()
			_ = Render(in)
		}()
	}
}
