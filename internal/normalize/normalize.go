// Package normalize converts an uploaded syllabus file into a single
// line-oriented text string. Line structure is preserved deliberately: every
// later stage of the extractor treats "same line" as a locality signal.
package normalize

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/examplan/syllaparse/internal/ocr"
	"github.com/examplan/syllaparse/internal/syllabus"
)

// Format is the detected document kind.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDocx  Format = "docx"
	FormatText  Format = "txt"
	FormatHTML  Format = "html"
	FormatImage Format = "image"
)

const acceptedTypes = "PDF, DOCX, TXT, HTML, PNG, or JPG"

// Input is an uploaded file: raw bytes plus a declared media type, with the
// filename kept for extension fallback when the media type is missing.
type Input struct {
	Data      []byte
	MediaType string
	Filename  string
}

// Normalizer turns files into text. OCR is the fallback collaborator for
// image files and for documents whose direct extraction looks unusable; a
// nil OCR disables the fallback, making extraction failures terminal.
type Normalizer struct {
	OCR ocr.Engine
}

// Detect resolves the document format from the declared media type, falling
// back to the filename extension. Unsupported inputs fail with the accepted
// set named in the error.
func Detect(in Input) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(in.MediaType, ";", 2)[0])) {
	case "application/pdf":
		return FormatPDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/msword":
		return FormatDocx, nil
	case "text/plain":
		return FormatText, nil
	case "text/html":
		return FormatHTML, nil
	case "image/png", "image/jpeg", "image/jpg":
		return FormatImage, nil
	}
	switch strings.ToLower(filepath.Ext(in.Filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx", ".doc":
		return FormatDocx, nil
	case ".txt", ".text":
		return FormatText, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".png", ".jpg", ".jpeg":
		return FormatImage, nil
	}
	return "", fmt.Errorf("%w %q: please upload %s files", syllabus.ErrUnsupportedType, in.MediaType, acceptedTypes)
}

// Text converts the input file to line-oriented text. PDFs and DOCX fall back
// to OCR when extraction fails or the scanned-document heuristic flags the
// output; images go straight to OCR. An OCR result with no usable text is
// terminal for the whole parse.
func (n *Normalizer) Text(ctx context.Context, in Input) (string, error) {
	format, err := Detect(in)
	if err != nil {
		return "", err
	}
	log.Debug().Str("format", string(format)).Int("bytes", len(in.Data)).Msg("normalizing document")

	switch format {
	case FormatText:
		return clean(string(in.Data)), nil
	case FormatHTML:
		return clean(fromHTML(in.Data)), nil
	case FormatImage:
		return n.viaOCR(ctx, in)
	case FormatPDF:
		text, err := extractPDF(in.Data)
		if err != nil || LooksScanned(text) {
			if err != nil {
				log.Debug().Err(err).Msg("pdf extraction failed, trying ocr")
			} else {
				log.Debug().Msg("pdf looks scanned, trying ocr")
			}
			return n.viaOCR(ctx, in)
		}
		return clean(text), nil
	case FormatDocx:
		text, err := extractDocx(in.Data)
		if err != nil || LooksScanned(text) {
			log.Debug().Err(err).Msg("docx extraction unusable, trying ocr")
			return n.viaOCR(ctx, in)
		}
		return clean(text), nil
	}
	return "", fmt.Errorf("%w %q: please upload %s files", syllabus.ErrUnsupportedType, in.MediaType, acceptedTypes)
}

func (n *Normalizer) viaOCR(ctx context.Context, in Input) (string, error) {
	if n.OCR == nil {
		return "", syllabus.ErrNoText
	}
	text, err := n.OCR.Recognize(ctx, in.Data, in.MediaType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", syllabus.ErrNoText, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", syllabus.ErrNoText
	}
	return clean(text), nil
}

var reAlnum = regexp.MustCompile(`[a-zA-Z0-9]`)

// LooksScanned flags directly extracted text as unreliable: very short, very
// few words, or mostly non-alphanumeric garbage. Any of the three implies an
// image-based document whose text layer did not capture the content.
func LooksScanned(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 100 {
		return true
	}
	if len(strings.Fields(trimmed)) < 20 {
		return true
	}
	ratio := float64(len(reAlnum.FindAllString(trimmed, -1))) / float64(len(trimmed))
	return ratio < 0.5
}

// clean normalizes line endings and applies Unicode NFC so that keyword and
// date matching sees composed characters.
func clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}
