// Command trireport writes static emissions reports and checks loaded
// datasets for integrity, using the same configuration as the dashboard.
//
// Usage:
//
//	trireport report --year 2022 --region TX --out report/
//	trireport validate --variant point-source --year 2021
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
