package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name, ext string
		in        []byte
		want      string
	}{
		{"txt", ".txt", []byte("Hello world\nLine 2"), "Hello world\nLine 2"},
		{"utf8", ".md", []byte("caf\xc3\xa9"), "café"},
		{"invalid utf8", ".rst", []byte("hello\x80world"), "hello�world"},
		{"bom and crlf", ".md", []byte("\xef\xbb\xbf# Title\r\n\r\n\r\n\r\nbody  \r\n"), "# Title\n\nbody"},
		{"upper ext", ".TXT", []byte("x"), "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.in, tt.ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytes_unsupported(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("x"), ".exe"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if e.Supported(".pptx") || !e.Supported(".PDF") {
		t.Error("Supported mismatch")
	}
	exts := e.Extensions()
	if len(exts) == 0 || exts[0] != ".docx" {
		t.Errorf("Extensions = %v", exts)
	}
}

func TestExtractBytes_xlsx(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "a|b")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	want := "## Sheet1\n\n| Title |  |\n| --- | --- |\n| Value 1 | a\\|b |"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractBytes_xlsxNotExcel(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("nope"), ".xlsx"); err == nil {
		t.Error("expected error for non-xlsx bytes")
	}
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func docxBody(body string) string {
	return `<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
}

// minimalDocx returns a .docx zip with body stored at docPath. A non-empty
// docPath other than the default also writes [Content_Types].xml.
func minimalDocx(body, docPath string, reversedAttrs bool) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if docPath == "" {
		docPath = docxDefaultPart
	} else {
		override := `<Override PartName="/` + docPath + `" ContentType="` + docxMainType + `"/>`
		if reversedAttrs {
			override = `<Override ContentType="` + docxMainType + `" PartName="/` + docPath + `"/>`
		}
		ct, _ := w.Create(contentTypesXML)
		_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + override + `</Types>`))
	}
	fw, _ := w.Create(docPath)
	_, _ = fw.Write([]byte(docxBody(body)))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name    string
		body    string
		docPath string
		rev     bool
		want    string
	}{
		{
			name: "single paragraph",
			body: `<w:p><w:r><w:t>Searchable docx content</w:t></w:r></w:p>`,
			want: "Searchable docx content",
		},
		{
			name: "paragraphs tabs and entities",
			body: `<w:p w:rsidR="00AB"><w:r><w:t xml:space="preserve">A &amp; B</w:t><w:tab/><w:t>C</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Second</w:t></w:r></w:p>`,
			want: "A & B\tC\n\nSecond",
		},
		{
			name:    "custom main part",
			body:    `<w:p><w:r><w:t>Content from document2</w:t></w:r></w:p>`,
			docPath: "word/document2.xml",
			want:    "Content from document2",
		},
		{
			name:    "content types reversed attributes",
			body:    `<w:p><w:r><w:t>Reversed order test</w:t></w:r></w:p>`,
			docPath: "word/document3.xml",
			rev:     true,
			want:    "Reversed order test",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(minimalDocx(tt.body, tt.docPath, tt.rev), ".docx")
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytes_docxErrors(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip")
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("other.xml")
	_ = w.Close()
	if _, err := e.ExtractBytes(buf.Bytes(), ".docx"); err == nil {
		t.Error("expected error when document part is missing")
	}
}

func TestExtractBytes_odtAndRTFUseCat(t *testing.T) {
	var seen [][]byte
	orig := catFromBytes
	catFromBytes = func(b []byte) (string, error) {
		seen = append(seen, b)
		if string(b) == "bad" {
			return "", errors.New("unknown format")
		}
		return "converted  \r\ntext", nil
	}
	t.Cleanup(func() { catFromBytes = orig })

	e := NewExtractor()
	for _, ext := range []string{".odt", ".rtf"} {
		got, err := e.ExtractBytes([]byte("doc"), ext)
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		if got != "converted\ntext" {
			t.Errorf("%s: got %q", ext, got)
		}
	}
	if len(seen) != 2 {
		t.Errorf("cat called %d times, want 2", len(seen))
	}
	if _, err := e.ExtractBytes([]byte("bad"), ".rtf"); err == nil {
		t.Error("cat error should propagate")
	}
}

func TestExtractBytes_pdfInvalid(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("%PDF-garbage"), ".pdf"); err == nil {
		t.Error("expected error for a broken PDF")
	}
}

func TestExtract_files(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(txt, []byte("File content\n"), 0600); err != nil {
		t.Fatal(err)
	}
	docx := filepath.Join(dir, "report.docx")
	if err := os.WriteFile(docx, minimalDocx(`<w:p><w:r><w:t>From file</w:t></w:r></w:p>`, "", false), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	if got, err := e.Extract(txt); err != nil || got != "File content" {
		t.Errorf("Extract(txt) = %q, %v", got, err)
	}
	if got, err := e.Extract(docx); err != nil || got != "From file" {
		t.Errorf("Extract(docx) = %q, %v", got, err)
	}
	if _, err := e.Extract(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := e.Extract(filepath.Join(dir, "slides.pptx")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("pptx: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"a\r\nb\rc", "a\nb\nc"},
		{"a   \n\n\n\nb\t", "a\n\nb"},
		{"\n\n  x  \n\n", "x"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
