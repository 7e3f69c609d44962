package filetype

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/enblacar/file-manager/internal/gatk"
)

// minVCFColumns is the number of fixed VCF columns (CHROM through INFO).
const minVCFColumns = 8

// ErrMalformedVCF is returned when the first data line of a VCF file has too
// few tab-separated columns.
var ErrMalformedVCF = errors.New("not a VCF file, or it is corrupted")

// VcfHandler handles .vcf files. Its input has passed ValidateVCF.
type VcfHandler struct {
	FileHandle
}

func (*VcfHandler) Kind() Kind { return KindVCF }

func newVcfHandler(fh FileHandle) (*VcfHandler, error) {
	f, err := openInput(fh.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := ValidateVCF(f); err != nil {
		return nil, fmt.Errorf("%s: %w", fh.path, err)
	}
	return &VcfHandler{FileHandle: fh}, nil
}

// maxVCFLine bounds a single VCF line; header lines can be long.
const maxVCFLine = 64 << 20

// ValidateVCF checks the first line that is neither blank nor a '#' header.
// Only that line is inspected; input with no such line is accepted. Lines
// may end in "\n", "\r\n" or a lone "\r".
func ValidateVCF(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxVCFLine)
	sc.Split(scanUniversalLines)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		if n := len(strings.Split(line, "\t")); n < minVCFColumns {
			return fmt.Errorf("%w: %d columns, need %d", ErrMalformedVCF, n, minVCFColumns)
		}
		return nil
	}
	return sc.Err()
}

// scanUniversalLines is a bufio.SplitFunc like bufio.ScanLines that also
// treats a lone '\r' as a line end. Terminators are dropped.
func scanUniversalLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// VariantsToTable summarizes the file into a TSV next to it.
func (h *VcfHandler) VariantsToTable(ctx context.Context, tool gatk.VariantsToTable) error {
	return tool.Run(ctx, h.path)
}
