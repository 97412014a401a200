package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-cropper/src/singleinstance"
)

// stress-runonce fires many concurrent run-once requests at a resident to
// check that all but one are turned away as busy and none hang.

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

type tally struct {
	ok, busy, notDelegated, failed int32
}

func (t *tally) String() string {
	return fmt.Sprintf("ok=%d busy=%d no-resident=%d err=%d", t.ok, t.busy, t.notDelegated, t.failed)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Stress test run-once delegation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := singleinstance.ParseMode(strings.ToUpper(opts.mode))
			if err != nil {
				return err
			}
			start := time.Now()
			t := stress(cmd.Context(), opts.n, opts.deadline, mode, singleinstance.NewClient)
			report(cmd.OutOrStdout(), opts.n, t, time.Since(start))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "clipboard", "clipboard|save: request mode sent to the resident")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func stress(ctx context.Context, n int, deadline time.Duration, mode singleinstance.Mode, newClient func() singleinstance.Client) *tally {
	var wg sync.WaitGroup
	t := &tally{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(ctx, deadline)
			defer cancel()
			delegated, _, err := newClient().TryRunOnce(ctx, mode)
			switch {
			case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
				atomic.AddInt32(&t.busy, 1)
			case err != nil:
				atomic.AddInt32(&t.failed, 1)
			case delegated:
				atomic.AddInt32(&t.ok, 1)
			default:
				atomic.AddInt32(&t.notDelegated, 1)
			}
		}()
	}
	wg.Wait()
	return t
}

func report(w io.Writer, n int, t *tally, elapsed time.Duration) {
	fmt.Fprintf(w, "launched=%d %s elapsed=%s\n", n, t, elapsed)
}
