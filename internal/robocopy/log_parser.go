package robocopy

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// ParseCounters scans the copy tool's log output and recovers the
// files-copied and bytes-copied counts from the summary table:
//
//	               Total    Copied   Skipped  Mismatch    FAILED    Extras
//	    Dirs :         3         2         1         0         0         0
//	   Files :        15        10         5         0         0         0
//	   Bytes :   1234567    567890         0         0         0         0
//
// The contract is tolerant by design: any line that cannot be parsed
// contributes zero, and a log without a summary table yields (0, 0).
// Callers must never fail a copy because its log would not parse.
func ParseCounters(log []byte) (filesCopied, bytesCopied int64) {
	scanner := bufio.NewScanner(bytes.NewReader(log))
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Files :"):
			if v, ok := copiedColumn(strings.TrimPrefix(line, "Files :")); ok {
				filesCopied = v
			}
		case strings.HasPrefix(line, "Bytes :"):
			if v, ok := copiedColumn(strings.TrimPrefix(line, "Bytes :")); ok {
				bytesCopied = v
			}
		}
	}

	return filesCopied, bytesCopied
}

// copiedColumn extracts the second value (the Copied column) from a summary
// row. Values are normally raw integers (the tool is invoked with /BYTES),
// but scaled forms like "1.234 g" are handled as a fallback for logs
// produced by hand-run copies.
func copiedColumn(row string) (int64, bool) {
	values := parseScaledValues(row)
	if len(values) < 2 {
		return 0, false
	}
	return values[1], true
}

func parseScaledValues(row string) []int64 {
	tokens := strings.Fields(row)
	values := make([]int64, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
			// A bare integer may still carry a scale suffix token ("512 m").
			if i+1 < len(tokens) {
				if mult, ok := scaleMultiplier(tokens[i+1]); ok {
					values = append(values, v*mult)
					i++
					continue
				}
			}
			values = append(values, v)
			continue
		}

		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			// Not a number at all; give up on this row rather than guess.
			return nil
		}
		mult := int64(1)
		if i+1 < len(tokens) {
			if m, ok := scaleMultiplier(tokens[i+1]); ok {
				mult = m
				i++
			}
		}
		values = append(values, int64(f*float64(mult)))
	}

	return values
}

func scaleMultiplier(token string) (int64, bool) {
	switch strings.ToLower(token) {
	case "k":
		return 1 << 10, true
	case "m":
		return 1 << 20, true
	case "g":
		return 1 << 30, true
	case "t":
		return 1 << 40, true
	default:
		return 0, false
	}
}
