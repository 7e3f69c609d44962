package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/enblacar/file-manager/internal/config"
	"github.com/enblacar/file-manager/internal/filetype"
	"github.com/enblacar/file-manager/internal/gatk"
	"github.com/enblacar/file-manager/internal/slurm"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

type options struct {
	configPath  string
	verbose     bool
	showVersion bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	v := config.New()
	cmd := &cobra.Command{
		Use:   "file-manager --file <path>",
		Short: "Dispatch FASTA, VCF and SLURM files to their handlers",
		Long: `file-manager looks at the extension of --file and hands it to a handler.

  .slurm  a SLURM batch script is generated from the cluster settings
          and written over the given path
  .vcf    the file is checked and, when --gatk is set, summarized into a
          .tsv table with GATK VariantsToTable
  .fasta  the records are read and counted

Settings come from config.json (or --config), FILEMANAGER_* environment
variables and flags, in increasing order of precedence.

Example:
  file-manager --file job.slurm --node catwoman --cpus 64 --mem 128000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintln(stdout, "file-manager", version)
				return nil
			}
			if err := config.Bind(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, closeLog := newLogger(stderr, cfg, opts.verbose)
			defer closeLog()
			if err := run(cmd.Context(), cfg, logger, stdout); err != nil {
				logger.Error("file-manager failed", "file", cfg.File, "err", err)
				return loggedError{err}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("file", "", "input file (.fasta, .vcf or .slurm)")
	f.StringVar(&opts.configPath, "config", "", "path to config.json (optional)")
	f.BoolVar(&opts.verbose, "verbose", false, "enable verbose (debug) logging")
	f.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	f.String("log-file", "", "also append logs to this file")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("gatk", "", "gatk launcher used to tabulate VCF files")
	f.Bool("dry-run", false, "print the job script or gatk call instead of running it")
	f.String("partition", "", "SLURM partition")
	f.String("node", "", "node to run on (--nodelist)")
	f.Int("cpus", 0, "CPUs per task")
	f.Int("mem", 0, "memory in MB")
	f.String("time", "", "time limit (hh-mm-ss)")
	f.Int("thread-multiplier", 0, "threads each CPU can run")
	f.Bool("exclusive", false, "request exclusive use of the node")
	f.String("shell-init", "", "file sourced before the job runs")
	f.String("script", "", "python script run by the job")
	f.String("data", "", "data file passed to the script")
	return cmd
}

// loggedError marks an error already reported by the configured logger.
type loggedError struct{ err error }

func (e loggedError) Error() string { return e.err.Error() }
func (e loggedError) Unwrap() error { return e.err }

// execute runs the root command with args. Errors raised before the logger
// is configured (flags, arguments, config file) go to a plain stderr logger.
func execute(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	var logged loggedError
	if err != nil && !errors.As(err, &logged) {
		log.New(stderr).Error("file-manager failed", "err", err)
	}
	return err
}

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, stdout io.Writer) error {
	logger.Debug("loaded config", "file", cfg.File, "log_file", cfg.LogFile, "log_level", cfg.LogLevel, "gatk", cfg.Gatk, "dry_run", cfg.DryRun)

	h, err := filetype.Classify(cfg.File)
	if err != nil {
		return err
	}
	logger.Info("classified input", "path", h.Path(), "kind", h.Kind())

	switch h := h.(type) {
	case *filetype.SlurmHandler:
		return writeJob(h, cfg, logger, stdout)
	case *filetype.VcfHandler:
		tabulate(ctx, h, cfg, logger)
	case *filetype.FastaHandler:
		records, err := h.Records()
		if err != nil {
			return fmt.Errorf("read %s: %w", h.Path(), err)
		}
		logger.Info("parsed fasta", "path", h.Path(), "records", len(records))
	}
	return nil
}

// clusterConfig applies the cluster section of cfg through the job writer's
// setters, so badly typed paths surface as slurm.ErrInvalidType.
func clusterConfig(c config.Cluster) (*slurm.ClusterConfig, error) {
	cc := slurm.NewClusterConfig()
	cc.SetNodeInformation(c.Node, c.Cpus, c.MemoryMb,
		slurm.WithPartition(c.Partition),
		slurm.WithTimeLimit(c.TimeLimit),
		slurm.WithThreadMultiplier(c.ThreadMultiplier),
		slurm.WithExclusive(c.Exclusive),
	)
	if err := cc.SetShellInitPath(c.ShellInit); err != nil {
		return nil, err
	}
	if err := cc.SetScriptPath(c.Script); err != nil {
		return nil, err
	}
	if err := cc.SetDataPath(c.Data); err != nil {
		return nil, err
	}
	return cc, nil
}

func writeJob(h *filetype.SlurmHandler, cfg *config.Config, logger *log.Logger, stdout io.Writer) error {
	cc, err := clusterConfig(cfg.Cluster)
	if err != nil {
		return err
	}
	mem := "-"
	if cc.MemoryMb() > 0 {
		mem = humanize.IBytes(uint64(cc.MemoryMb()) * humanize.MiByte)
	}
	logger.Info("job resources", "node", cc.Node(), "partition", cc.Partition(), "cpus", cc.Cpus(), "threads", cc.Threads(), "mem", mem, "exclusive", cc.Exclusive())

	if cfg.DryRun {
		logger.Info("dry-run: printing job instead of writing it", "path", h.Path())
		return cc.WriteJob(stdout)
	}
	if err := h.GenerateJob(cc); err != nil {
		return err
	}
	logger.Info("wrote job script", "path", h.Path(), "script", cc.ScriptPath(), "data", cc.DataPath())
	return nil
}

// tabulate runs VariantsToTable when a gatk launcher is configured. Tool
// failures are logged and otherwise ignored.
func tabulate(ctx context.Context, h *filetype.VcfHandler, cfg *config.Config, logger *log.Logger) {
	logger.Info("vcf file looks valid", "path", h.Path())
	if cfg.Gatk == "" {
		logger.Warn("no gatk launcher configured; skipping VariantsToTable", "path", h.Path())
		return
	}
	tool := gatk.VariantsToTable{
		Exec:    cfg.Gatk,
		Timeout: time.Duration(cfg.GatkTimeoutSeconds) * time.Second,
	}
	if cfg.DryRun {
		logger.Info("dry-run: skipping gatk invocation", "exec", tool.Exec, "args", gatk.Args(h.Path()))
		return
	}
	start := time.Now()
	if err := h.VariantsToTable(ctx, tool); err != nil {
		logger.Error("VariantsToTable failed", "path", h.Path(), "err", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Info("wrote variants table", "path", gatk.TablePath(h.Path()), "duration_ms", time.Since(start).Milliseconds())
}
