package main

import (
	"context"
	"fmt"
	"hoteldesk/pkg/config"
	"os"
	"os/signal"
	"syscall"
)

const ServiceName = "hoteldesk"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(ServiceName)
	env := newEnv(cfg, os.Stdout, os.Stderr)

	if err := newApp(env).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
