package supervisor

import (
	"context"
	"os"
	"os/exec"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

// execProcess wraps an exec.Cmd as a WorkerProcess.
type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) PID() int { return p.cmd.Process.Pid }

func (p *execProcess) Kill() error { return p.cmd.Process.Kill() }

func (p *execProcess) Wait() error { return p.cmd.Wait() }

// NewExecLauncher returns a Launcher that runs the worker binary at path
// with the supervisor's environment. Worker stdout/stderr pass through so
// worker logs share the supervisor's streams.
func NewExecLauncher(path string, args ...string) Launcher {
	return func(ctx context.Context) (WorkerProcess, error) {
		cmd := exec.Command(path, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = os.Environ()
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		return &execProcess{cmd: cmd}, nil
	}
}

// cpuSampler measures per-process CPU with gopsutil, keeping one process
// handle per PID: Percent(0) reports utilization since the previous call
// on the same handle, which gives a per-interval reading rather than a
// since-boot average.
type cpuSampler struct {
	mu      sync.Mutex
	handles map[int]*process.Process
}

// NewCPUSampler returns a SampleFunc backed by gopsutil.
func NewCPUSampler() SampleFunc {
	s := &cpuSampler{handles: make(map[int]*process.Process)}
	return s.sample
}

func (s *cpuSampler) sample(ctx context.Context, pid int) (float64, error) {
	s.mu.Lock()
	p, ok := s.handles[pid]
	s.mu.Unlock()

	if !ok {
		var err error
		p, err = process.NewProcessWithContext(ctx, int32(pid))
		if err != nil {
			return 0, ErrNoProcess
		}
		s.mu.Lock()
		// Drop handles for other PIDs: there is only one active worker.
		s.handles = map[int]*process.Process{pid: p}
		s.mu.Unlock()
	}

	cpu, err := p.PercentWithContext(ctx, 0)
	if err != nil {
		return 0, err
	}
	return cpu, nil
}
