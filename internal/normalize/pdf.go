package normalize

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF reads every page's content stream and reconstructs visual lines:
// text fragments sharing a rounded y-coordinate belong to one line, lines are
// ordered top to bottom, pages in order. Extraction order alone interleaves
// table columns badly, and the classifier depends on "same line" locality.
func extractPDF(data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		stream, err := io.ReadAll(r)
		if err != nil || len(stream) == 0 {
			continue
		}
		if page := linesFromStream(stream); page != "" {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no text content found in pdf")
	}
	return strings.Join(pages, "\n"), nil
}

type fragment struct {
	y    float64
	seq  int
	text string
}

// linesFromStream walks the content stream operators tracking the text
// cursor's vertical position, collects positioned fragments, and groups them
// into lines by rounded y.
func linesFromStream(stream []byte) string {
	frags := collectFragments(stream)
	if len(frags) == 0 {
		return ""
	}

	byY := make(map[float64][]fragment)
	for _, f := range frags {
		byY[f.y] = append(byY[f.y], f)
	}
	ys := make([]float64, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	// PDF user space grows upward: larger y is higher on the page.
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

	var lines []string
	for _, y := range ys {
		group := byY[y]
		sort.Slice(group, func(i, j int) bool { return group[i].seq < group[j].seq })
		parts := make([]string, 0, len(group))
		for _, f := range group {
			if s := strings.TrimSpace(f.text); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}

const defaultLeading = 12

func collectFragments(stream []byte) []fragment {
	var (
		frags    []fragment
		operands []float64
		strs     []string
		y        float64
		leading  float64
		seq      int
	)

	emit := func(text string) {
		if text == "" {
			return
		}
		frags = append(frags, fragment{y: math.Round(y), seq: seq, text: text})
		seq++
	}
	newline := func() {
		if leading != 0 {
			y -= leading
		} else {
			y -= defaultLeading
		}
	}

	i := 0
	for i < len(stream) {
		c := stream[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			s, next := readLiteralString(stream, i)
			strs = append(strs, s)
			i = next
		case c == '<':
			if i+1 < len(stream) && stream[i+1] == '<' {
				i += 2
				continue
			}
			s, next := readHexString(stream, i)
			strs = append(strs, s)
			i = next
		case c == '[' || c == ']' || c == '>':
			i++
		case c == '/':
			i++
			for i < len(stream) && !isDelimiter(stream[i]) {
				i++
			}
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			start := i
			i++
			for i < len(stream) && (stream[i] == '.' || (stream[i] >= '0' && stream[i] <= '9')) {
				i++
			}
			if v, err := strconv.ParseFloat(string(stream[start:i]), 64); err == nil {
				operands = append(operands, v)
			}
		default:
			start := i
			for i < len(stream) && !isDelimiter(stream[i]) {
				i++
			}
			op := string(stream[start:i])
			switch op {
			case "BT":
				y = 0
			case "Td":
				if len(operands) >= 2 {
					y += operands[len(operands)-1]
				}
			case "TD":
				if len(operands) >= 2 {
					ty := operands[len(operands)-1]
					leading = -ty
					y += ty
				}
			case "Tm":
				if len(operands) >= 6 {
					y = operands[len(operands)-1]
				}
			case "TL":
				if len(operands) >= 1 {
					leading = operands[len(operands)-1]
				}
			case "T*":
				newline()
			case "Tj":
				emit(lastString(strs))
			case "'":
				newline()
				emit(lastString(strs))
			case "\"":
				newline()
				emit(lastString(strs))
			case "TJ":
				emit(strings.Join(strs, ""))
			}
			operands = operands[:0]
			strs = strs[:0]
		}
	}
	return frags
}

func lastString(strs []string) string {
	if len(strs) == 0 {
		return ""
	}
	return strs[len(strs)-1]
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '<', '>', '[', ']', '/', '%':
		return true
	}
	return false
}

// readLiteralString consumes a parenthesized PDF string starting at i,
// handling nested parentheses and escape sequences, and returns the decoded
// text plus the index just past the closing parenthesis.
func readLiteralString(stream []byte, i int) (string, int) {
	var sb strings.Builder
	depth := 0
	for ; i < len(stream); i++ {
		c := stream[i]
		switch {
		case c == '\\' && i+1 < len(stream):
			i++
			switch stream[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\', '(', ')':
				sb.WriteByte(stream[i])
			default:
				if stream[i] >= '0' && stream[i] <= '7' {
					val := int(stream[i] - '0')
					for k := 0; k < 2 && i+1 < len(stream) && stream[i+1] >= '0' && stream[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(stream[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(stream[i])
				}
			}
		case c == '(':
			depth++
			if depth > 1 {
				sb.WriteByte(c)
			}
		case c == ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), i
}

// readHexString consumes a <...> hex string starting at i and decodes byte
// pairs, which covers simple single-byte encodings.
func readHexString(stream []byte, i int) (string, int) {
	i++ // past '<'
	var hex []byte
	for ; i < len(stream) && stream[i] != '>'; i++ {
		c := stream[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			hex = append(hex, c)
		}
	}
	if i < len(stream) {
		i++ // past '>'
	}
	if len(hex)%2 == 1 {
		hex = append(hex, '0')
	}
	var sb strings.Builder
	for k := 0; k+1 < len(hex); k += 2 {
		v, err := strconv.ParseUint(string(hex[k:k+2]), 16, 8)
		if err != nil {
			continue
		}
		sb.WriteByte(byte(v))
	}
	return sb.String(), i
}
