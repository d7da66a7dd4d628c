// Command bookctl books an appointment from the terminal against a running API.
//
//	bookctl -salon studio-aurora
//	bookctl cancel -id 42 -manage-token 3f0c...
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/client"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/wizard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "cancel" {
		cancelCmd(ctx, os.Args[2:])
		return
	}

	var (
		baseURL = flag.String("base-url", getenv("BOOKCTL_BASE_URL", "http://localhost:8080"), "API base url")
		salon   = flag.String("salon", getenv("BOOKCTL_SALON", "studio-aurora"), "salon slug")
		token   = flag.String("token", getenv("BOOKCTL_TOKEN", ""), "provider JWT; books through /api/me")
		timeout = flag.Duration("timeout", 10*time.Second, "per-request timeout")
		verbose = flag.Bool("v", false, "log API calls")
	)
	flag.Parse()

	c := newClient(*baseURL, *token, *timeout, *verbose)
	if err := run(ctx, os.Stdin, os.Stdout, wizard.New(c), *salon); err != nil {
		fatal(describe(err))
	}
}

func cancelCmd(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	var (
		baseURL = fs.String("base-url", getenv("BOOKCTL_BASE_URL", "http://localhost:8080"), "API base url")
		id      = fs.Uint("id", 0, "appointment id")
		manage  = fs.String("manage-token", "", "token returned when the booking was made")
	)
	_ = fs.Parse(args)

	if *id == 0 || strings.TrimSpace(*manage) == "" {
		fatal("-id and -manage-token are required")
	}

	res, err := newClient(*baseURL, "", 10*time.Second, false).Cancel(ctx, *id, *manage)
	if err != nil {
		fatal(describe(err))
	}
	if !res.Changed {
		fmt.Println("agendamento já estava cancelado")
		return
	}
	fmt.Printf("agendamento %d cancelado\n", res.Appointment.ID)
}

func newClient(baseURL, token string, timeout time.Duration, verbose bool) *client.Client {
	log := zerolog.Nop()
	if verbose {
		log = logger.New("debug", true)
	}

	opts := []client.Option{
		client.WithLogger(log),
		client.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}
	return client.New(baseURL, opts...)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "bookctl:", msg)
	os.Exit(1)
}
