package filetype

// Package filetype picks a handler for an input file from the suffix after
// the last '.' in its path.

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrMissingInput is returned when no input path was given.
	ErrMissingInput = errors.New("no input file given")
	// ErrUnsupportedFileType is returned for suffixes with no handler.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// Kind identifies a handler variant.
type Kind int

const (
	KindFasta Kind = iota
	KindVCF
	KindSlurm
)

func (k Kind) String() string {
	switch k {
	case KindFasta:
		return "fasta"
	case KindVCF:
		return "vcf"
	case KindSlurm:
		return "slurm"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Handler is implemented by every file handler.
type Handler interface {
	Path() string
	Extension() string
	Kind() Kind
}

// FileHandle is an input path and the extension derived from it.
type FileHandle struct {
	path      string
	extension string
}

// NewFileHandle derives the extension from path. A path without '.' gives
// the whole path back as its extension.
func NewFileHandle(path string) FileHandle {
	return FileHandle{path: path, extension: extension(path)}
}

func extension(path string) string {
	return path[strings.LastIndex(path, ".")+1:]
}

func (f FileHandle) Path() string      { return f.path }
func (f FileHandle) Extension() string { return f.extension }

// Classify builds the handler matching path's extension. VCF files are
// opened and checked before the handler is returned.
func Classify(path string) (Handler, error) {
	if path == "" {
		return nil, ErrMissingInput
	}
	fh := NewFileHandle(path)
	switch fh.extension {
	case KindFasta.String():
		return &FastaHandler{FileHandle: fh}, nil
	case KindVCF.String():
		h, err := newVcfHandler(fh)
		if err != nil {
			return nil, err
		}
		return h, nil
	case KindSlurm.String():
		return &SlurmHandler{FileHandle: fh}, nil
	}
	return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFileType, fh.extension, path)
}

// FastaHandler handles .fasta files.
type FastaHandler struct {
	FileHandle
}

func (*FastaHandler) Kind() Kind { return KindFasta }

// SlurmHandler handles .slurm job scripts.
type SlurmHandler struct {
	FileHandle
}

func (*SlurmHandler) Kind() Kind { return KindSlurm }

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
