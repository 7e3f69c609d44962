package filetype

import (
	"github.com/enblacar/file-manager/internal/fasta"
	"github.com/enblacar/file-manager/internal/slurm"
)

// Records reads the FASTA records of the file.
func (h *FastaHandler) Records() ([]fasta.Record, error) {
	f, err := openInput(h.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fasta.Parse(f)
}

// GenerateJob writes the job script for cfg over the handler's own path.
func (h *SlurmHandler) GenerateJob(cfg *slurm.ClusterConfig) error {
	return cfg.GenerateJob(h.path)
}
