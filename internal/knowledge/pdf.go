package knowledge

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"strings"
)

var errNoText = errors.New("no extractable text in document")

// ExtractText pulls the text content out of a PDF document. It inflates
// FlateDecode content streams and collects the string literals fed to the
// text-showing operators, which covers the plain machine-generated PDFs
// trading guides usually are. Scanned or exotic documents yield errNoText.
func ExtractText(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", errors.New("not a PDF document")
	}

	var out strings.Builder
	for _, stream := range contentStreams(data) {
		runs := textRuns(stream)
		for _, run := range runs {
			out.WriteString(run)
			out.WriteByte(' ')
		}
		if len(runs) > 0 {
			out.WriteByte('\n')
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", errNoText
	}
	return text, nil
}

// contentStreams returns every stream body in the file, inflated when the
// body is zlib-compressed.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	rest := data
	for {
		start := bytes.Index(rest, []byte("stream"))
		if start < 0 {
			break
		}
		body := rest[start+len("stream"):]
		// The keyword is followed by CRLF or LF before the stream bytes.
		body = bytes.TrimPrefix(body, []byte("\r\n"))
		body = bytes.TrimPrefix(body, []byte("\n"))

		end := bytes.Index(body, []byte("endstream"))
		if end < 0 {
			break
		}
		// Inflate from the untrimmed body: the zlib reader stops at the end
		// of the deflate stream on its own, and trimming could eat checksum
		// bytes that happen to look like line endings.
		if inflated, err := inflate(body[:end]); err == nil {
			streams = append(streams, inflated)
		} else {
			streams = append(streams, bytes.TrimRight(body[:end], "\r\n"))
		}
		rest = body[end+len("endstream"):]
	}
	return streams
}

func inflate(raw []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// textRuns collects the parenthesized string literals from a content
// stream, honoring PDF escape sequences.
func textRuns(stream []byte) []string {
	var runs []string
	var current strings.Builder
	depth := 0

	for i := 0; i < len(stream); i++ {
		ch := stream[i]
		if depth == 0 {
			if ch == '(' {
				depth = 1
			}
			continue
		}

		switch ch {
		case '\\':
			if i+1 >= len(stream) {
				continue
			}
			i++
			switch stream[i] {
			case 'n':
				current.WriteByte('\n')
			case 't':
				current.WriteByte('\t')
			case 'r', 'f', 'b':
				current.WriteByte(' ')
			default:
				current.WriteByte(stream[i])
			}
		case '(':
			depth++
			current.WriteByte(ch)
		case ')':
			depth--
			if depth == 0 {
				if run := strings.TrimSpace(current.String()); run != "" && printable(run) {
					runs = append(runs, run)
				}
				current.Reset()
			} else {
				current.WriteByte(ch)
			}
		default:
			current.WriteByte(ch)
		}
	}
	return runs
}

// printable filters out binary junk that happens to sit between parens in
// non-text streams.
func printable(s string) bool {
	graphic := 0
	for _, r := range s {
		if r >= 0x20 && r < 0x7f || r == '\n' || r == '\t' {
			graphic++
		}
	}
	return graphic*10 >= len(s)*9
}
