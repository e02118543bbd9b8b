package exec

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is one ephemeral, uniquely named execution directory. It owns
// exactly the source file and stdin file written into it and is destroyed
// unconditionally when the run finishes.
type Workspace struct {
	Dir string
}

// SandboxRunner is the capability boundary for isolated execution. The
// orchestrator's control flow depends only on this interface, so the
// concrete isolation technology is swappable.
type SandboxRunner interface {
	// Provision allocates a workspace and writes the source and stdin files.
	Provision(pipeline Pipeline, code, stdin string) (*Workspace, error)
	// Execute runs the pipeline's command inside the sandbox with the
	// workspace mounted, honoring ctx for the outer timeout. Captured
	// output is returned even when err is non-nil.
	Execute(ctx context.Context, ws *Workspace, pipeline Pipeline) (stdout, stderr string, err error)
	// Teardown removes the workspace and all its contents.
	Teardown(ws *Workspace) error
}

// DockerRunner runs pipelines in throwaway docker containers with no
// network namespace, 128 MiB of memory and half a CPU.
type DockerRunner struct {
	root           string // parent dir for workspaces; "" means os.TempDir
	imageTag       string
	maxOutputBytes int
}

// NewDockerRunner creates a docker-backed sandbox runner. Captured stdout
// and stderr are each truncated at maxOutputBytes.
func NewDockerRunner(root, imageTag string, maxOutputBytes int) *DockerRunner {
	if root == "" {
		root = os.TempDir()
	}
	if imageTag == "" {
		imageTag = "latest"
	}
	return &DockerRunner{
		root:           root,
		imageTag:       imageTag,
		maxOutputBytes: maxOutputBytes,
	}
}

// Provision creates a uniquely named workspace directory holding the
// source file and stdin file. Name uniqueness is what keeps concurrent
// runs independent; no locking is involved.
func (r *DockerRunner) Provision(pipeline Pipeline, code, stdin string) (*Workspace, error) {
	dir := filepath.Join(r.root, fmt.Sprintf("code-run-%s", uuid.NewString()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, pipeline.Filename), []byte(code), 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write source file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, StdinFilename), []byte(stdin), 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write stdin file: %w", err)
	}

	return &Workspace{Dir: dir}, nil
}

// Execute invokes docker run with the workspace bind-mounted at
// /workspace. The context bounds the whole invocation including image
// startup and compilation; on expiry the container process is killed.
func (r *DockerRunner) Execute(ctx context.Context, ws *Workspace, pipeline Pipeline) (string, string, error) {
	image := fmt.Sprintf("%s:%s", pipeline.Image, r.imageTag)

	cmd := osexec.CommandContext(ctx, "docker", "run", "--rm",
		"--network", "none",
		"--memory", "128m",
		"--cpus", "0.5",
		"-v", ws.Dir+":/workspace",
		"-w", "/workspace",
		image,
		"bash", "-c", pipeline.Command,
	)

	stdout := newBoundedBuffer(r.maxOutputBytes)
	stderr := newBoundedBuffer(r.maxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Teardown synchronously removes the workspace directory.
func (r *DockerRunner) Teardown(ws *Workspace) error {
	if err := os.RemoveAll(ws.Dir); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", ws.Dir, err)
	}
	return nil
}
