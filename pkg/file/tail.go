package file

import (
	"bytes"
	"io"
	"os"
	"strings"
)

const tailChunk = 4096

// TailLines returns the last n lines of f, oldest first, without line
// endings. The file is read backwards so large logs are not loaded whole.
func TailLines(f *os.File, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	offset := stat.Size()
	var buf []byte
	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		read := int64(tailChunk)
		if offset < read {
			read = offset
		}
		offset -= read
		part := make([]byte, read)
		if _, err := f.ReadAt(part, offset); err != nil && err != io.EOF {
			return nil, err
		}
		buf = append(part, buf...)
	}

	text := strings.TrimRight(string(buf), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
