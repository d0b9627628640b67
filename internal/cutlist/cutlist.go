package cutlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Cut describes a single segment to extract: start and end timecodes plus the
// output name from the cutlist line. Timecodes stay verbatim so ffmpeg sees
// exactly what the author wrote; Name is sanitized to a bare path component
// with no extension.
type Cut struct {
	Start string
	End   string
	Name  string
}

// OutputFile returns the container filename for the cut. The .mp4 suffix is
// appended unconditionally, even when the name already carries an extension.
func (c Cut) OutputFile() string {
	return c.Name + ".mp4"
}

// Parse reads a cutlist document. Blank lines and comment lines are skipped,
// as are lines with a field count other than three.
func Parse(r io.Reader) ([]Cut, error) {
	var cuts []Cut
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		cuts = append(cuts, Cut{
			Start: fields[0],
			End:   fields[1],
			Name:  SanitizeName(fields[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cutlist: %w", err)
	}
	return cuts, nil
}

// ParseFile opens and parses the cutlist at path.
func ParseFile(path string) ([]Cut, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cutlist: %w", err)
	}
	defer file.Close()
	return Parse(file)
}
