package markdown

import (
	"fmt"
	"strings"
)

type state int

const (
	stateNone state = iota
	stateList
	stateCommits
)

// commit is a record collected from a commit header item and its nested
// Hash/Author/Time items. message is already HTML.
type commit struct {
	message string
	hash    string
	author  string
	time    string
}

// renderer walks classified lines. It is either outside any block, inside a
// plain list, or inside a run of commit records.
type renderer struct {
	lines []line
	out   []string
	state state
	cur   *commit
	run   []commit
}

func renderDocument(src string) string {
	raws := splitLines(src)
	r := &renderer{lines: make([]line, len(raws))}
	for i, raw := range raws {
		r.lines[i] = classify(raw)
	}
	for i, l := range r.lines {
		r.step(i, l)
	}
	r.closeBlocks()
	return strings.Join(r.out, "\n")
}

func (r *renderer) step(i int, l line) {
	switch l.kind {
	case lineBlank:
		// A blank line ends the current commit but not the run; the next
		// line decides whether the run continues.
		if r.state == stateCommits {
			r.flushCommit()
			return
		}
		r.closeBlocks()
	case lineHeading:
		r.closeBlocks()
		r.emit(fmt.Sprintf("<h%d>%s</h%d>", l.level, formatInline(l.text), l.level))
	case lineText:
		r.closeBlocks()
		r.emit("<p>" + formatInline(l.text) + "</p>")
	case lineItem:
		if r.isCommitHeader(i) {
			r.startCommit(l.text)
			return
		}
		r.listItem(l.text)
	case lineNested:
		if r.state == stateCommits && r.cur != nil {
			r.cur.attach(l.text)
			return
		}
		r.listItem(l.text)
	}
}

// isCommitHeader reports whether the top-level item at i starts a commit
// record: its text is a single code span, or the next line is a nested
// Hash/Author/Time item.
func (r *renderer) isCommitHeader(i int) bool {
	if codeOnly.MatchString(r.lines[i].text) {
		return true
	}
	if i+1 >= len(r.lines) {
		return false
	}
	next := r.lines[i+1]
	return next.kind == lineNested && commitKey.MatchString(next.text)
}

func (r *renderer) startCommit(text string) {
	switch r.state {
	case stateList:
		r.closeBlocks()
	case stateCommits:
		r.flushCommit()
	}
	msg := formatInline(text)
	if m := codeOnly.FindStringSubmatch(text); m != nil {
		msg = Escape(m[1])
	}
	r.cur = &commit{message: msg}
	r.state = stateCommits
}

func (r *renderer) listItem(text string) {
	if r.state == stateCommits {
		r.closeBlocks()
	}
	if r.state != stateList {
		r.emit("<ul>")
		r.state = stateList
	}
	r.emit("<li>" + formatInline(text) + "</li>")
}

// attach stores a known metadata item; anything else is dropped.
func (c *commit) attach(text string) {
	m := commitKey.FindStringSubmatch(text)
	if m == nil {
		return
	}
	value := strings.TrimSpace(m[2])
	if cm := codeOnly.FindStringSubmatch(value); cm != nil {
		value = cm[1]
	}
	switch m[1] {
	case "Hash":
		c.hash = value
	case "Author":
		c.author = value
	case "Time":
		c.time = value
	}
}

func (r *renderer) flushCommit() {
	if r.cur != nil {
		r.run = append(r.run, *r.cur)
		r.cur = nil
	}
}

func (r *renderer) closeBlocks() {
	switch r.state {
	case stateList:
		r.emit("</ul>")
	case stateCommits:
		r.flushCommit()
		r.emit(renderCommits(r.run))
		r.run = nil
	}
	r.state = stateNone
}

func (r *renderer) emit(s string) {
	r.out = append(r.out, s)
}

func renderCommits(run []commit) string {
	var b strings.Builder
	b.WriteString(`<div class="commit-list">`)
	for _, c := range run {
		b.WriteString("\n")
		b.WriteString(`<article class="commit">`)
		b.WriteString(`<p class="commit-message">` + c.message + `</p>`)
		if c.hash != "" || c.author != "" || c.time != "" {
			b.WriteString(`<dl class="commit-meta">`)
			if c.hash != "" {
				b.WriteString(`<dt>Hash</dt><dd><code class="commit-hash">` + Escape(c.hash) + `</code></dd>`)
			}
			if c.author != "" {
				b.WriteString(`<dt>Author</dt><dd class="commit-author">` + Escape(c.author) + `</dd>`)
			}
			if c.time != "" {
				t := Escape(c.time)
				b.WriteString(`<dt>Time</dt><dd><time datetime="` + t + `">` + t + `</time></dd>`)
			}
			b.WriteString(`</dl>`)
		}
		b.WriteString(`</article>`)
	}
	b.WriteString("\n</div>")
	return b.String()
}
