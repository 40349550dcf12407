package node

import (
	"context"
	"fmt"
	"io"
	"net"
	"os/exec"
	"sync"
	"syscall"
	"time"

	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/errors"
	"github.com/sirupsen/logrus"
)

const DefaultBinaryPath = "../../target/release/ice-node"

// The node always runs as a throwaway development chain.
var DefaultArgs = []string{"--dev"}

const PollInterval = 250 * time.Millisecond
const StopGracePeriod = 10 * time.Second

// Node is a child node process owned by the harness.
type Node struct {
	Binary string
	Args   []string

	cmd      *exec.Cmd
	output   io.WriteCloser
	exited   chan struct{}
	exitErr  error
	stopOnce sync.Once
}

// Start launches the node binary. The process is not tied to ctx; call Stop to end it.
func Start(ctx context.Context, binary string, args ...string) (*Node, error) {
	if binary == "" {
		binary = DefaultBinaryPath
	}
	if len(args) == 0 {
		args = DefaultArgs
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ProcessSpawnf("could not start %s: %w", binary, err)
	}
	log := logrus.WithField("binary", binary)

	cmd := exec.Command(binary, args...)
	output := logrus.WithField("process", "node").WriterLevel(logrus.DebugLevel)
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Start(); err != nil {
		output.Close()
		return nil, errors.ProcessSpawnf("could not start %s: %w", binary, err)
	}
	log.WithFields(logrus.Fields{
		"pid":  cmd.Process.Pid,
		"args": args,
	}).Info("started node")

	n := &Node{
		Binary: binary,
		Args:   args,
		cmd:    cmd,
		output: output,
		exited: make(chan struct{}),
	}
	go func() {
		n.exitErr = cmd.Wait()
		output.Close()
		close(n.exited)
		log.WithError(n.exitErr).Debug("node exited")
	}()
	return n, nil
}

func (n *Node) Pid() int {
	return n.cmd.Process.Pid
}

// Exited is closed once the process has been reaped.
func (n *Node) Exited() <-chan struct{} {
	return n.exited
}

// WaitUntilReady polls the endpoint's tcp port until it accepts a connection.
func (n *Node) WaitUntilReady(ctx context.Context, endpoint string, timeout time.Duration) error {
	return waitForPort(ctx, endpoint, timeout, n.exited)
}

// WaitForEndpoint is WaitUntilReady for a node the harness did not start.
func WaitForEndpoint(ctx context.Context, endpoint string, timeout time.Duration) error {
	return waitForPort(ctx, endpoint, timeout, nil)
}

func waitForPort(ctx context.Context, endpoint string, timeout time.Duration, exited <-chan struct{}) error {
	hostPort, err := icetest.HostPort(endpoint)
	if err != nil {
		return errors.Wrapf(errors.StartupTimeoutError, err, "")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logrus.WithField("endpoint", hostPort)
	dialer := net.Dialer{Timeout: time.Second}
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	start := time.Now()
	for {
		conn, err := dialer.DialContext(ctx, "tcp", hostPort)
		if err == nil {
			conn.Close()
			log.WithField("elapsed", time.Since(start).String()).Info("node is accepting connections")
			return nil
		}
		log.WithError(err).Trace("node not ready")

		select {
		case <-exited:
			return errors.StartupTimeoutf("node exited before %s was reachable", hostPort)
		case <-ctx.Done():
			return errors.StartupTimeoutf("%s not reachable after %s: %w", hostPort, timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Stop terminates the node, escalating to SIGKILL after StopGracePeriod. Safe to call more than once.
func (n *Node) Stop() error {
	var err error
	n.stopOnce.Do(func() {
		err = n.stop(StopGracePeriod)
	})
	return err
}

func (n *Node) stop(grace time.Duration) error {
	select {
	case <-n.exited:
		return nil
	default:
	}
	log := logrus.WithField("pid", n.Pid())
	if err := n.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		log.WithError(err).Debug("could not signal node")
	}
	select {
	case <-n.exited:
		log.Info("stopped node")
		return nil
	case <-time.After(grace):
	}
	log.Warn("node did not stop in time, killing")
	if err := n.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("could not kill node: %w", err)
	}
	<-n.exited
	return nil
}
