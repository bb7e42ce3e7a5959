package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ksysoev/issue-fetcher/pkg/github"
	"github.com/sethvargo/go-githubactions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := realMain(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)

	stop()
	os.Exit(code)
}

// realMain runs the command and returns the process exit code
func realMain(ctx context.Context, args []string, stdout, stderr io.Writer, getenv githubactions.GetenvFunc, clientOpts ...github.Option) int {
	action := githubactions.New(githubactions.WithWriter(stdout), githubactions.WithGetenv(getenv))

	cmd := newRootCommand(action, clientOpts...)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(stderr, getenv, err)
		return 1
	}

	return 0
}

// reportError prints err as a workflow error annotation inside GitHub Actions and as plain text elsewhere
func reportError(w io.Writer, getenv githubactions.GetenvFunc, err error) {
	if getenv("GITHUB_ACTIONS") == "true" {
		githubactions.New(githubactions.WithWriter(w), githubactions.WithGetenv(getenv)).Errorf("Error: %v", err)
		return
	}

	fmt.Fprintf(w, "Error: %v\n", err)
}
