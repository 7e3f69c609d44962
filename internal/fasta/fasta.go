package fasta

// Package fasta reads FASTA records for the FASTA file handler. Parsing is
// delegated to biogo; this package only flattens its sequences into plain
// header/sequence pairs.

import (
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Record is a single FASTA entry.
type Record struct {
	// Header is the full description line without the leading '>'.
	Header   string
	Sequence string
}

// Parse reads every record from r.
func Parse(r io.Reader) ([]Record, error) {
	template := linear.NewSeq("", nil, alphabet.DNA)
	sc := seqio.NewScanner(fasta.NewReader(r, template))
	var records []Record
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		header := s.Name()
		if desc := s.Description(); desc != "" {
			header += " " + desc
		}
		records = append(records, Record{Header: header, Sequence: s.Seq.String()})
	}
	if err := sc.Error(); err != nil {
		return records, err
	}
	return records, nil
}
