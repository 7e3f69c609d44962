package slurm

// Package slurm renders SLURM batch-job scripts from a cluster
// configuration. The script layout is fixed; only the directive values and
// the optional --time and --exclusive lines vary.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/template"
)

// DefaultShellInitPath is sourced by every generated job unless changed.
const DefaultShellInitPath = "~/.bashrc"

const (
	jobName     = "eblanco"
	interpreter = "python3.7"
)

// ErrInvalidType is returned by the path setters when given a non-string.
var ErrInvalidType = errors.New("input path is not a string")

var jobTemplate = template.Must(template.New("job").Parse(`#!/bin/bash
#SBATCH --partition {{.Partition}}
#SBATCH --nodelist {{.Node}}
#SBATCH --mem {{.MemoryMb}}
#SBATCH --cpus-per-task {{.Cpus}}
{{if .TimeLimit}}#SBATCH --time {{.TimeLimit}}
{{end}}#SBATCH --job-name {{.JobName}}
{{if .Exclusive}}#SBATCH --exclusive
{{end}}
source {{.ShellInitPath}}
hostname
date

{{.Interpreter}} {{.ScriptPath}} --file {{.DataPath}}
`))

// ClusterConfig holds the scheduler parameters shared by every job the
// process generates. Fields change only through the setters.
type ClusterConfig struct {
	partition        string
	node             string
	cpus             int
	memoryMb         int
	timeLimit        string
	threadMultiplier int
	threads          int
	exclusive        bool
	shellInitPath    string
	scriptPath       string
	dataPath         string
}

// NewClusterConfig returns a config with a thread multiplier of 1 and the
// default shell init path.
func NewClusterConfig() *ClusterConfig {
	return &ClusterConfig{
		threadMultiplier: 1,
		shellInitPath:    DefaultShellInitPath,
	}
}

type nodeOptions struct {
	partition        string
	timeLimit        string
	threadMultiplier *int
	exclusive        bool
}

// NodeOption sets one of the optional arguments of SetNodeInformation.
type NodeOption func(*nodeOptions)

// WithPartition selects the partition to submit to.
func WithPartition(p string) NodeOption {
	return func(o *nodeOptions) { o.partition = p }
}

// WithTimeLimit sets a wall-clock limit, formatted hh-mm-ss.
func WithTimeLimit(t string) NodeOption {
	return func(o *nodeOptions) { o.timeLimit = t }
}

// WithThreadMultiplier sets how many threads each CPU may run.
func WithThreadMultiplier(n int) NodeOption {
	return func(o *nodeOptions) { o.threadMultiplier = &n }
}

// WithExclusive requests the node exclusively.
func WithExclusive(e bool) NodeOption {
	return func(o *nodeOptions) { o.exclusive = e }
}

// SetNodeInformation replaces the node parameters. Options not given fall
// back to their defaults rather than keeping earlier values. Ranges are not
// checked, so an explicit multiplier of 0 gives 0 threads. An unset partition
// renders as an empty --partition value.
func (c *ClusterConfig) SetNodeInformation(node string, cpus, memoryMb int, opts ...NodeOption) {
	o := nodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	multiplier := 1
	if o.threadMultiplier != nil {
		multiplier = *o.threadMultiplier
	}
	c.partition = o.partition
	c.node = node
	c.cpus = cpus
	c.memoryMb = memoryMb
	c.timeLimit = o.timeLimit
	c.threadMultiplier = multiplier
	c.threads = cpus * multiplier
	c.exclusive = o.exclusive
}

// SetShellInitPath changes the file sourced before the job runs.
func (c *ClusterConfig) SetShellInitPath(path any) error {
	return setPath(&c.shellInitPath, "shell init", path)
}

// SetScriptPath changes the script the job executes.
func (c *ClusterConfig) SetScriptPath(path any) error {
	return setPath(&c.scriptPath, "script", path)
}

// SetDataPath changes the data file handed to the script.
func (c *ClusterConfig) SetDataPath(path any) error {
	return setPath(&c.dataPath, "data", path)
}

func setPath(dst *string, name string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s path: %w (got %T)", name, ErrInvalidType, v)
	}
	*dst = s
	return nil
}

func (c *ClusterConfig) Partition() string     { return c.partition }
func (c *ClusterConfig) Node() string          { return c.node }
func (c *ClusterConfig) Cpus() int             { return c.cpus }
func (c *ClusterConfig) MemoryMb() int         { return c.memoryMb }
func (c *ClusterConfig) TimeLimit() string     { return c.timeLimit }
func (c *ClusterConfig) ThreadMultiplier() int { return c.threadMultiplier }
func (c *ClusterConfig) Threads() int          { return c.threads }
func (c *ClusterConfig) Exclusive() bool       { return c.exclusive }
func (c *ClusterConfig) ShellInitPath() string { return c.shellInitPath }
func (c *ClusterConfig) ScriptPath() string    { return c.scriptPath }
func (c *ClusterConfig) DataPath() string      { return c.dataPath }

// JobName is the fixed --job-name value.
func (c *ClusterConfig) JobName() string { return jobName }

// Interpreter runs ScriptPath inside the job.
func (c *ClusterConfig) Interpreter() string { return interpreter }

// WriteJob renders the job script to w.
func (c *ClusterConfig) WriteJob(w io.Writer) error {
	return jobTemplate.Execute(w, c)
}

// GenerateJob creates or truncates outputPath and writes the job script.
func (c *ClusterConfig) GenerateJob(outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := c.WriteJob(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return f.Close()
}
