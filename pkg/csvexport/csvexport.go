// Package csvexport writes table pages as CSV with every field quoted.
package csvexport

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const ContentType = "text/csv; charset=utf-8"

// Filename is the download name for a table export.
func Filename(table string) string { return table + "_export.csv" }

// Write emits one header row then one line per row. Every field is
// wrapped in double quotes and embedded quotes are doubled.
func Write(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	if err := writeLine(bw, header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeLine(bw, r); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Bytes is Write into memory.
func Bytes(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, header, rows)
	return buf.Bytes()
}

func writeLine(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(Quote(f)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
