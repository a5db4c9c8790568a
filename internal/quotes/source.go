package quotes

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Format identifies how a quote source is laid out.
type Format int

const (
	// FormatLines holds one quote per line.
	FormatLines Format = iota
	// FormatDocx is a Word document; each paragraph is a quote.
	FormatDocx
	// FormatJSON is an array of strings or an object with a "quotes" array.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatDocx:
		return "docx"
	case FormatJSON:
		return "json"
	default:
		return "lines"
	}
}

// FormatFor picks a format from the file extension. Unknown extensions are
// read as plain lines.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDocx
	case ".json":
		return FormatJSON
	default:
		return FormatLines
	}
}

// LoadError reports an unreadable or malformed quote source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load quotes from %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads path from fs and returns the resulting bank. An existing but
// empty source yields an empty bank, not an error.
func Load(fs afero.Fs, path string) (*Bank, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	candidates, err := Parse(bytes.NewReader(data), FormatFor(path))
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return New(candidates), nil
}

// Parse extracts candidate quotes in source order. Callers should pass the
// result through New to trim and drop blanks.
func Parse(r io.Reader, f Format) ([]string, error) {
	switch f {
	case FormatDocx:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return parseDocx(data)
	case FormatJSON:
		return parseJSON(r)
	default:
		return parseLines(r)
	}
}

const maxLineBytes = 1 << 20

func parseLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []string
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseJSON(r io.Reader) ([]string, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode json: %w", err)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var doc struct {
		Quotes []string `json:"quotes"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("expected a string array or {\"quotes\": [...]}: %w", err)
	}
	return doc.Quotes, nil
}

const (
	docxBodyPart   = "word/document.xml"
	wordprocessing = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

var errNoDocumentPart = errors.New("docx has no " + docxBodyPart)

func parseDocx(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", docxBodyPart, err)
		}
		defer rc.Close()
		return docxParagraphs(rc)
	}
	return nil, errNoDocumentPart
}

// docxParagraphs concatenates the w:t runs of every w:p element.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		cur    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", docxBodyPart, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessing {
				continue
			}
			switch t.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inText = true
			case "tab":
				cur.WriteByte('\t')
			case "br", "cr":
				cur.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessing {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out = append(out, cur.String())
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
}
