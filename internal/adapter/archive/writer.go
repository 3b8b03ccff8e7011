package archive

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Member is one table to be written into an archive.
type Member struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Writer produces archives in the police export layout: every member is an HTML
// document holding one table, encoded with the configured charset.
type Writer struct {
	enc encoding.Encoding
}

// NewWriter creates a Writer for the named encoding.
func NewWriter(encodingName string) (*Writer, error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("archive encoding %q: %w", encodingName, err)
	}
	return &Writer{enc: enc}, nil
}

// Write stores the members into a new zip archive written to w.
func (aw *Writer) Write(w io.Writer, members []Member) error {
	zw := zip.NewWriter(w)
	for _, m := range members {
		f, err := zw.Create(m.Name)
		if err != nil {
			return fmt.Errorf("create member %s: %w", m.Name, err)
		}
		ew := encoding.ReplaceUnsupported(aw.enc.NewEncoder()).Writer(f)
		if _, err := io.WriteString(ew, renderHTML(m)); err != nil {
			return fmt.Errorf("write member %s: %w", m.Name, err)
		}
	}
	return zw.Close()
}

func renderHTML(m Member) string {
	var b strings.Builder
	b.WriteString("<html><body><table>\n<tr>")
	for _, h := range m.Header {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n")
	for _, row := range m.Rows {
		b.WriteString("<tr>")
		for _, c := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(c))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>\n")
	return b.String()
}
