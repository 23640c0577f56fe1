// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package mp

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Node selects where and how a slave worker runs (spec §4.6 "Master
// spawns per-window slave processes. Strategy:").
type Node struct {
	Name    string // "auto" for an in-process worker; otherwise a hostname.
	Process string // "auto" for in-process; "new" to fork+exec.
}

// Env carries the environment variables forwarded to a spawned slave
// (spec §6: "These are forwarded to remote slaves").
type Env struct {
	VERoot        string
	VEEnv         string
	LDLibraryPath string
	Display       string
	VEDebug       string
}

func (e Env) asOSEnv() []string {
	base := os.Environ()
	return append(base,
		"VEROOT="+e.VERoot,
		"VEENV="+e.VEEnv,
		"LD_LIBRARY_PATH="+e.LDLibraryPath,
		"DISPLAY="+e.Display,
		"VEDEBUG="+e.VEDebug,
	)
}

// Worker is a running (or in-process) slave: its transport pipe and a
// means to wait for and terminate it.
type Worker struct {
	Node Node

	cmd    *exec.Cmd // nil for an in-process worker.
	pid    int
	stdin  io.WriteCloser
	stdout io.ReadCloser

	inProcR, inProcW *os.File
	outProcR, outProcW *os.File
}

// Spawn starts a slave per the three-case strategy of spec §4.6:
//  1. node=="auto" && process=="auto": an in-process worker over a pair
//     of OS pipes, no new process.
//  2. node is a remote host: writes an execution script to the remote
//     host via remote shell, chmods it, execs remote shell again to run
//     it with env forwarded and cwd restored.
//  3. local node, new process: fork+exec with stdio attached to pipes.
func Spawn(node Node, env Env, localExe string, args []string) (*Worker, error) {
	switch {
	case (node.Name == "" || node.Name == "auto") && (node.Process == "" || node.Process == "auto"):
		return spawnInProcess(node)
	case node.Name != "" && node.Name != "auto" && node.Name != "localhost":
		return spawnRemote(node, env, localExe, args)
	default:
		return spawnLocalProcess(node, env, localExe, args)
	}
}

// spawnInProcess wires a worker to a pair of OS pipes with no new
// process: the "auto"/"auto" case is for workers that run as goroutines
// in the master's own address space.
func spawnInProcess(node Node) (*Worker, error) {
	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("mp: in-process pipe: %w", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		inR.Close()
		inW.Close()
		return nil, fmt.Errorf("mp: in-process pipe: %w", err)
	}
	return &Worker{
		Node:       node,
		pid:        os.Getpid(),
		stdin:      inW,
		stdout:     outR,
		inProcR:    inR,
		inProcW:    inW,
		outProcR:   outR,
		outProcW:   outW,
	}, nil
}

// spawnLocalProcess forks+execs localExe with stdio attached to pipes
// (spec §4.6 case 3).
func spawnLocalProcess(node Node, env Env, localExe string, args []string) (*Worker, error) {
	cmd := exec.Command(localExe, args...)
	cmd.Env = env.asOSEnv()
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mp: starting local slave: %w", err)
	}
	return &Worker{Node: node, cmd: cmd, pid: cmd.Process.Pid, stdin: stdin, stdout: stdout}, nil
}

// remoteShell is the remote-shell command used to reach a remote node;
// a package variable so tests can substitute a stub.
var remoteShell = "rsh"

// spawnRemote writes an execution script to the remote host via rsh,
// chmods it, then execs rsh again to run it with env forwarded and cwd
// restored (spec §4.6 case 2).
func spawnRemote(node Node, env Env, localExe string, args []string) (*Worker, error) {
	script := remoteScript(env, localExe, args)
	scriptPath := fmt.Sprintf("/tmp/ve-slave-%d.sh", os.Getpid())

	write := exec.Command(remoteShell, node.Name, fmt.Sprintf("cat > %s && chmod +x %s", scriptPath, scriptPath))
	write.Stdin = strings.NewReader(script)
	if err := write.Run(); err != nil {
		return nil, fmt.Errorf("mp: writing remote slave script via %s: %w", remoteShell, err)
	}

	cmd := exec.Command(remoteShell, node.Name, scriptPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mp: starting remote slave via %s: %w", remoteShell, err)
	}
	return &Worker{Node: node, cmd: cmd, pid: cmd.Process.Pid, stdin: stdin, stdout: stdout}, nil
}

// remoteScript builds the shell script the master writes to the remote
// host: cwd restored, then the forwarded environment, then the exe.
func remoteScript(env Env, exe string, args []string) string {
	cwd, _ := os.Getwd()
	s := "#!/bin/sh\n"
	s += fmt.Sprintf("cd %q\n", cwd)
	s += fmt.Sprintf("export VEROOT=%q\n", env.VERoot)
	s += fmt.Sprintf("export VEENV=%q\n", env.VEEnv)
	s += fmt.Sprintf("export LD_LIBRARY_PATH=%q\n", env.LDLibraryPath)
	s += fmt.Sprintf("export DISPLAY=%q\n", env.Display)
	s += fmt.Sprintf("export VEDEBUG=%q\n", env.VEDebug)
	s += "exec " + exe
	for _, a := range args {
		s += fmt.Sprintf(" %q", a)
	}
	s += "\n"
	return s
}

// Stdin, Stdout expose the worker's transport pipe for message framing.
func (w *Worker) Stdin() io.Writer  { return w.stdin }
func (w *Worker) Stdout() io.Reader { return w.stdout }

// Pid returns the slave's process id (the master's own pid for an
// in-process worker).
func (w *Worker) Pid() int { return w.pid }

// Terminate sends SIGTERM to the slave process, a no-op for an
// in-process worker (there is no separate process to signal).
func (w *Worker) Terminate() error {
	if w.cmd == nil {
		return nil
	}
	return unix.Kill(w.pid, unix.SIGTERM)
}

// Close releases the worker's pipes.
func (w *Worker) Close() error {
	if w.stdin != nil {
		w.stdin.Close()
	}
	if w.stdout != nil {
		w.stdout.Close()
	}
	if w.inProcW != nil {
		w.inProcW.Close()
	}
	if w.outProcR != nil {
		w.outProcR.Close()
	}
	return nil
}

// Supervisor tracks every slave the master has spawned so that, on
// master exit, all outstanding slave pids are sent SIGTERM (spec §4.6
// "Signals").
type Supervisor struct {
	mu      sync.Mutex
	workers []*Worker
}

// NewSupervisor returns an empty supervisor.
func NewSupervisor() *Supervisor { return &Supervisor{} }

// Track registers w so TerminateAll reaches it.
func (s *Supervisor) Track(w *Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, w)
}

// TerminateAll sends SIGTERM to every tracked slave; call from the
// master's exit path.
func (s *Supervisor) TerminateAll() {
	s.mu.Lock()
	workers := append([]*Worker(nil), s.workers...)
	s.mu.Unlock()
	for _, w := range workers {
		w.Terminate()
	}
}
