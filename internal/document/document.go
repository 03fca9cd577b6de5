package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

const utf8Name = "utf-8"

// Document is a parsed page that remembers the charset it arrived in, so
// it can be written back the same way.
type Document struct {
	*goquery.Document
	Encoding string
	enc      encoding.Encoding
}

// Parse decodes body using the Content-Type header and in-document meta
// declarations.
func Parse(body []byte, contentType string) (*Document, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	// The detector only samples the first KB and falls back to
	// windows-1252 for ASCII prefixes.
	if !certain && name == "windows-1252" && utf8.Valid(body) {
		enc, name = encoding.Nop, utf8Name
	}

	var reader io.Reader = bytes.NewReader(body)
	if name != utf8Name {
		reader = enc.NewDecoder().Reader(reader)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html (%s): %w", name, err)
	}
	return &Document{Document: doc, Encoding: name, enc: enc}, nil
}

// Render writes the whole document in its source encoding. Runes the
// encoding cannot represent become HTML character references.
func (d *Document) Render(w io.Writer) error {
	if len(d.Nodes) == 0 {
		return fmt.Errorf("render: empty document")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, d.Nodes[0]); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out := buf.Bytes()
	if d.Encoding != utf8Name && d.enc != nil {
		encoded, err := encoding.HTMLEscapeUnsupported(d.enc.NewEncoder()).Bytes(out)
		if err != nil {
			return fmt.Errorf("render %s: %w", d.Encoding, err)
		}
		out = encoded
	}

	_, err := w.Write(out)
	return err
}

// Save renders the document to path. The previous file at path is only
// replaced once the new one is fully written.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := d.Render(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// OwnText returns the text nodes directly under the first node of s,
// skipping nested elements such as per-m² badges. It falls back to the
// full text when those nodes hold no digits, as in
// <strong><span>1 500</span> zł</strong>.
func OwnText(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for child := s.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
	}
	if !hasDigit(b.String()) {
		return s.First().Text()
	}
	return b.String()
}

// SetOwnText replaces the first text node directly under s that holds a
// digit, keeping its surrounding whitespace and any nested elements.
// Without one, it replaces all content.
func SetOwnText(s *goquery.Selection, text string) {
	if s == nil || s.Length() == 0 {
		return
	}
	for child := s.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode && hasDigit(child.Data) {
			trimmed := strings.TrimSpace(child.Data)
			start := strings.Index(child.Data, trimmed)
			child.Data = child.Data[:start] + text + child.Data[start+len(trimmed):]
			return
		}
	}
	s.First().SetText(text)
}

func hasDigit(value string) bool {
	return strings.IndexFunc(value, unicode.IsDigit) >= 0
}
