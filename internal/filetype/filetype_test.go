package filetype

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/enblacar/file-manager/internal/slurm"
)

const validVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"chr1\t100\t.\tA\tG\t50\tPASS\tDP=10\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"reads.fasta":      "fasta",
		"a.b.vcf":          "vcf",
		"job.slurm":        "slurm",
		"noext":            "noext",
		"dir.d/file":       "d/file",
		"trailing.":        "",
		"archive.vcf.gz":   "gz",
		"./relative.fasta": "fasta",
	}
	for in, want := range cases {
		if got := NewFileHandle(in).Extension(); got != want {
			t.Fatalf("extension of %q = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyKinds(t *testing.T) {
	dir := t.TempDir()
	vcf := filepath.Join(dir, "calls.vcf")
	if err := os.WriteFile(vcf, []byte(validVCF), 0o644); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		path string
		kind Kind
	}{
		{filepath.Join(dir, "missing.fasta"), KindFasta},
		{vcf, KindVCF},
		{filepath.Join(dir, "missing.slurm"), KindSlurm},
	}
	for _, c := range cases {
		h, err := Classify(c.path)
		if err != nil {
			t.Fatalf("Classify(%q): %v", c.path, err)
		}
		if h.Kind() != c.kind || h.Path() != c.path || h.Extension() != c.kind.String() {
			t.Fatalf("Classify(%q) = %v %q %q", c.path, h.Kind(), h.Path(), h.Extension())
		}
	}
}

func TestClassifyFastaAndSlurmHaveNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x.fasta", "x.slurm"} {
		p := filepath.Join(dir, name)
		if _, err := Classify(p); err != nil {
			t.Fatalf("Classify(%q): %v", p, err)
		}
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s was touched", p)
		}
	}
}

func TestClassifyUnsupported(t *testing.T) {
	for _, p := range []string{"notes.txt", "noext", "x.FASTA", "x.vcf.gz"} {
		h, err := Classify(p)
		if !errors.Is(err, ErrUnsupportedFileType) {
			t.Fatalf("Classify(%q): expected ErrUnsupportedFileType, got %v", p, err)
		}
		if h != nil {
			t.Fatalf("Classify(%q) returned handler %v", p, h)
		}
	}
}

func TestClassifyMissingInput(t *testing.T) {
	if _, err := Classify(""); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestClassifyVCFNotFound(t *testing.T) {
	p := filepath.Join(t.TempDir(), "absent.vcf")
	_, err := Classify(p)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestClassifyMalformedVCF(t *testing.T) {
	p := writeFile(t, "bad.vcf", "##header\n\nchr1\t100\t.\tA\n")
	if _, err := Classify(p); !errors.Is(err, ErrMalformedVCF) {
		t.Fatalf("expected ErrMalformedVCF, got %v", err)
	}
}

func TestValidateVCF(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", validVCF, true},
		{"headers only", "##a\n#CHROM\n\n\n", true},
		{"empty", "", true},
		{"no trailing newline", "#h\nc\t1\t.\tA\tG\t.\t.\t.", true},
		{"short first data line", "#h\nc\t1\t.\tA\tG\t.\t.\n", false},
		{"only first data line checked", "#h\n" + strings.Repeat("x\t", 7) + "x\nshort\n", true},
		{"whitespace line is data", "#h\n \n", false},
		{"crlf lines", "##fileformat=VCFv4.2\r\n\r\nchr1\t1\t.\tA\tG\t50\tPASS\tDP=1\r\n", true},
		{"crlf short data line", "#h\r\n\r\nchr1\t1\r\n", false},
		{"lone cr line ends", "#h\r\rchr1\t1\t.\tA\tG\t50\tPASS\tDP=1\r", true},
		{"lone cr short data line", "#h\rchr1\t1\r", false},
	}
	for _, c := range cases {
		err := ValidateVCF(strings.NewReader(c.input))
		if c.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok && !errors.Is(err, ErrMalformedVCF) {
			t.Fatalf("%s: expected ErrMalformedVCF, got %v", c.name, err)
		}
	}
}

func TestFastaRecords(t *testing.T) {
	p := writeFile(t, "seqs.fasta", ">a\nAC\n>b\nGT\n")
	h, err := Classify(p)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := h.(*FastaHandler).Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(recs) != 2 || recs[1].Header != "b" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestSlurmGenerateJob(t *testing.T) {
	p := filepath.Join(t.TempDir(), "run.slurm")
	h, err := Classify(p)
	if err != nil {
		t.Fatal(err)
	}
	cfg := slurm.NewClusterConfig()
	cfg.SetNodeInformation("catwoman", 64, 128000, slurm.WithPartition("p_hpca4se"))
	if err := h.(*SlurmHandler).GenerateJob(cfg); err != nil {
		t.Fatalf("GenerateJob: %v", err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(got), "#!/bin/bash\n#SBATCH --partition p_hpca4se\n") {
		t.Fatalf("unexpected job script:\n%s", got)
	}
}
