// Package installer runs the external package manager that installs and
// removes plugin packages.
//
// Install and uninstall run asynchronously as child processes. The caller
// gets a Job handle streaming combined output lines and signalling
// completion; the plugins dialog tails the output into its log pane and
// re-runs plugin discovery when the job reports success.
package installer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrEmptyPackage is returned when no package name is given.
var ErrEmptyPackage = errors.New("installer: package name is empty")

// Kind distinguishes install from uninstall jobs.
type Kind int

const (
	KindInstall Kind = iota
	KindUninstall
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInstall:
		return "install"
	case KindUninstall:
		return "uninstall"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Result is the outcome of a finished job.
type Result struct {
	OK       bool
	ExitCode int
	Err      error // process-level failure, nil for a clean nonzero exit
}

// Job is a handle on one running (or finished) install/uninstall.
type Job struct {
	// ID uniquely identifies the job for log correlation.
	ID string

	// Kind is what the job does.
	Kind Kind

	// Package is the package being installed or removed.
	Package string

	output chan string
	done   chan struct{}
	cancel context.CancelFunc

	mu     sync.Mutex
	result Result
}

// Output streams combined stdout/stderr lines. Closed when the job ends.
func (j *Job) Output() <-chan string {
	return j.output
}

// Done is closed when the job has finished and its result is available.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result returns the job outcome. Valid only after Done is closed.
func (j *Job) Result() Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Cancel kills the job's process. Safe to call multiple times and after
// completion.
func (j *Job) Cancel() {
	j.cancel()
}

// Installer runs plugin package installs through an external program,
// luarocks by default. At most one job runs at a time; starting a new job
// while one is in flight cancels the old one first.
type Installer struct {
	program       string
	installArgs   []string
	uninstallArgs []string

	mu      sync.Mutex
	current *Job
}

// Option configures an Installer.
type Option func(*Installer)

// WithProgram overrides the package manager executable.
func WithProgram(program string) Option {
	return func(i *Installer) {
		if program != "" {
			i.program = program
		}
	}
}

// WithInstallArgs overrides the arguments preceding the package name on
// install.
func WithInstallArgs(args ...string) Option {
	return func(i *Installer) {
		i.installArgs = args
	}
}

// WithUninstallArgs overrides the arguments preceding the package name on
// uninstall.
func WithUninstallArgs(args ...string) Option {
	return func(i *Installer) {
		i.uninstallArgs = args
	}
}

// New creates an installer with the default luarocks configuration.
func New(opts ...Option) *Installer {
	i := &Installer{
		program:       "luarocks",
		installArgs:   []string{"install", "--local"},
		uninstallArgs: []string{"remove", "--local"},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install starts an asynchronous install of the named package.
func (i *Installer) Install(ctx context.Context, pkg string) (*Job, error) {
	return i.start(ctx, KindInstall, pkg, i.installArgs)
}

// Uninstall starts an asynchronous removal of the named package.
func (i *Installer) Uninstall(ctx context.Context, pkg string) (*Job, error) {
	return i.start(ctx, KindUninstall, pkg, i.uninstallArgs)
}

// Current returns the in-flight job, or nil.
func (i *Installer) Current() *Job {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current != nil {
		select {
		case <-i.current.done:
			return nil
		default:
			return i.current
		}
	}
	return nil
}

func (i *Installer) start(ctx context.Context, kind Kind, pkg string, baseArgs []string) (*Job, error) {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return nil, ErrEmptyPackage
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	// One job at a time. A stale in-flight job is cancelled and replaced;
	// its goroutine still drains and closes its own channels.
	if prev := i.current; prev != nil {
		select {
		case <-prev.done:
		default:
			prev.Cancel()
		}
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:      uuid.NewString(),
		Kind:    kind,
		Package: pkg,
		output:  make(chan string, 64),
		done:    make(chan struct{}),
		cancel:  cancel,
	}

	args := make([]string, 0, len(baseArgs)+1)
	args = append(args, baseArgs...)
	args = append(args, pkg)
	cmd := exec.CommandContext(jobCtx, i.program, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("installer: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("installer: start %s: %w", i.program, err)
	}

	i.current = job
	go job.run(cmd, stdout)
	return job, nil
}

// run streams process output and records the result. Owns the output and
// done channels.
func (j *Job) run(cmd *exec.Cmd, stdout io.Reader) {
	defer close(j.done)
	defer close(j.output)
	defer j.cancel()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		select {
		case j.output <- scanner.Text():
		default:
			// Slow consumer; drop rather than stall the process.
		}
	}

	err := cmd.Wait()
	res := Result{OK: err == nil, ExitCode: 0}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = err
		}
	}

	j.mu.Lock()
	j.result = res
	j.mu.Unlock()
}
