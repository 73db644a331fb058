package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

type trackedProcess struct {
	pid        int32
	createTime int64
}

// processTree is the set of descendants of the browser process observed
// before it was killed. Chromium renderer and gpu processes are re-parented
// when the main process dies abruptly, so they are tracked up front.
type processTree []trackedProcess

func snapshotTree(ctx context.Context, pid int) processTree {
	if pid <= 0 {
		return nil
	}
	root, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil
	}
	var tree processTree
	collectDescendants(ctx, root, &tree)
	return tree
}

func collectDescendants(ctx context.Context, p *process.Process, out *processTree) {
	children, err := p.ChildrenWithContext(ctx)
	if err != nil {
		return
	}
	for _, child := range children {
		createTime, err := child.CreateTimeWithContext(ctx)
		if err != nil {
			continue
		}
		*out = append(*out, trackedProcess{pid: child.Pid, createTime: createTime})
		collectDescendants(ctx, child, out)
	}
}

// reap kills every tracked process that is still alive. A pid is only
// killed when its creation time still matches, so a recycled pid is left
// alone.
func (t processTree) reap(ctx context.Context) (int, error) {
	reaped := 0
	var errlist []error
	for _, tracked := range t {
		exists, err := process.PidExistsWithContext(ctx, tracked.pid)
		if err != nil || !exists {
			continue
		}
		p, err := process.NewProcessWithContext(ctx, tracked.pid)
		if err != nil {
			continue
		}
		createTime, err := p.CreateTimeWithContext(ctx)
		if err != nil || createTime != tracked.createTime {
			continue
		}
		err = p.KillWithContext(ctx)
		if err != nil {
			errlist = append(errlist, fmt.Errorf("kill orphaned browser process %d: %w", tracked.pid, err))
			continue
		}
		reaped++
	}
	return reaped, errors.Join(errlist...)
}
