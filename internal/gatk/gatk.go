package gatk

// Package gatk provides a thin wrapper around the GATK VariantsToTable tool.
// The tool is treated as a black box: its output table is never read back.

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoExecutable is returned by Run when no GATK executable is configured.
var ErrNoExecutable = errors.New("no gatk executable configured")

// Site-level (-F) and genotype-level (-GF) fields extracted into the table.
var (
	siteFields = []string{
		"CHROM", "POS", "ID", "REF", "ALT", "FILTER",
		"AC", "AF", "AN", "DP", "ExcessHet", "FS",
		"MLEAC", "MLEAF", "MQ", "QD", "SOR",
	}
	genotypeFields = []string{"GT", "AD", "DP", "GQ", "PL"}
)

// VariantsToTable runs `<Exec> VariantsToTable` on a VCF file.
type VariantsToTable struct {
	// Exec is the gatk launcher, either a name on PATH or a full path.
	Exec    string
	Timeout time.Duration
}

// TablePath returns vcfPath with its final extension replaced by ".tsv".
func TablePath(vcfPath string) string {
	return strings.TrimSuffix(vcfPath, filepath.Ext(vcfPath)) + ".tsv"
}

// Args builds the argument list passed to the gatk launcher.
func Args(vcfPath string) []string {
	args := []string{
		"VariantsToTable",
		"--variant", vcfPath,
		"--output", TablePath(vcfPath),
	}
	for _, f := range siteFields {
		args = append(args, "-F", f)
	}
	for _, f := range genotypeFields {
		args = append(args, "-GF", f)
	}
	return args
}

// Run executes the tool. A zero Timeout means ctx alone bounds the call.
func (v VariantsToTable) Run(ctx context.Context, vcfPath string) error {
	if v.Exec == "" {
		return ErrNoExecutable
	}
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}
	out, err := exec.CommandContext(ctx, v.Exec, Args(vcfPath)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s VariantsToTable: %w (output: %s)", v.Exec, err, strings.TrimSpace(string(out)))
	}
	return nil
}
