package shared

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"
)

// shutdownGrace is how long the process may take to close its sockets
// after the first signal before it exits anyway.
const shutdownGrace = 5 * time.Second

// NotifyContext returns a context that is cancelled by the first interrupt
// or termination signal. A second signal exits at once with status 128+n.
// stop releases the signal handlers and must be called when the command is
// done.
func NotifyContext(parent context.Context) (ctx context.Context, stop func()) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, shutdownSignals()...)
	if runtime.GOOS != "windows" {
		// a vanished peer must surface as EPIPE from send
		signal.Ignore(syscall.SIGPIPE)
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	go watchSignals(sigCh, done, cancel, os.Exit, shutdownGrace)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
			cancel()
		})
	}
}

func shutdownSignals() []os.Signal {
	if runtime.GOOS == "windows" {
		return []os.Signal{os.Interrupt}
	}
	return []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}
}

// watchSignals cancels on the first signal, then calls exit on a second
// signal or once grace has passed. Closing done ends it early.
func watchSignals(sigCh <-chan os.Signal, done <-chan struct{}, cancel context.CancelFunc, exit func(int), grace time.Duration) {
	var first os.Signal
	select {
	case first = <-sigCh:
		cancel()
	case <-done:
		return
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-sigCh:
		exit(exitCode(first))
	case <-timer.C:
		exit(0)
	case <-done:
	}
}

// exitCode follows the shell convention of 128 plus the signal number.
func exitCode(s os.Signal) int {
	if ss, ok := s.(syscall.Signal); ok {
		return 128 + int(ss)
	}
	return 1
}
