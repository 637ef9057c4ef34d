// logtrace-demo is a small HTTP service demonstrating call-hierarchy trace
// logging: each request produces indented begin/end lines for the handler and
// the nested service calls it makes, correlated by one identifier, with
// optional propagation to a downstream instance.
//
// Run two instances to see cross-process correlation:
//
//	logtrace-demo --listen-addr localhost:8078
//	logtrace-demo --listen-addr localhost:8077 --downstream http://localhost:8078/work
//	curl -H 'X-Correlation-Id: demo1234' http://localhost:8077/work
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/peterbourgon/unixtransport"

	"github.com/asyncsite/logtrace"
	"github.com/asyncsite/logtrace/internal/logz"
	"github.com/asyncsite/logtrace/logtracehttp"
)

func main() {
	err := exec(context.Background(), os.Args[1:])
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	case errors.Is(err, ff.ErrHelp):
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, args []string) error {
	var (
		listenAddr string
		logLevel   string
		envFile    string
		downstream string
	)

	fs := ff.NewFlagSet("logtrace-demo")
	fs.AddFlag(ff.FlagConfig{LongName: "listen-addr", Value: ffval.NewValueDefault(&listenAddr, "localhost:8077"), Usage: "HTTP listen address"})
	fs.AddFlag(ff.FlagConfig{LongName: "log-level", Value: ffval.NewValueDefault(&logLevel, "info"), Usage: "debug, info, warn, error"})
	fs.AddFlag(ff.FlagConfig{LongName: "env-file", Value: ffval.NewValue(&envFile), Usage: "load LOGTRACE_* configuration from this file"})
	fs.AddFlag(ff.FlagConfig{LongName: "downstream", Value: ffval.NewValue(&downstream), Usage: "optional URL called by /work; http+unix:// schemes supported"})

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("LOGTRACE_DEMO")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := logtrace.ConfigFromEnv()
	if err != nil {
		return err
	}

	logger, err := logz.New(logz.Config{Level: logLevel, OutputPaths: []string{"stdout"}})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	tracer := logtrace.NewTracer(logger)
	interceptor := logtrace.NewInterceptor(tracer, logger, cfg)

	transport := &http.Transport{}
	unixtransport.Register(transport)

	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	if cfg.HTTPEnabled {
		client.Transport = &logtracehttp.Transport{Next: transport}
	}

	svc := &service{
		interceptor: interceptor,
		client:      client,
		downstream:  downstream,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/work", svc.handleWork)
	mux.HandleFunc("/fail", svc.handleFail)

	server := &http.Server{
		Addr:    listenAddr,
		Handler: logtracehttp.Middleware(interceptor)(mux),
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	var g run.Group
	{
		g.Add(func() error {
			logger.Info("listening on " + listenAddr)
			return server.Serve(ln)
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		})
	}
	{
		g.Add(run.SignalHandler(ctx, os.Interrupt))
	}
	return g.Run()
}

//
//
//

type service struct {
	interceptor *logtrace.Interceptor
	client      *http.Client
	downstream  string
}

func (s *service) handleWork(w http.ResponseWriter, r *http.Request) {
	out, err := s.interceptor.Around(r.Context(), logtrace.Invocation{
		Signature: logtrace.ShortSignature(logtrace.FuncSignature((*service).compute)),
	}, func(ctx context.Context) (any, error) {
		return s.compute(ctx)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	fmt.Fprintf(w, "%v\n", out)
}

func (s *service) handleFail(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "deliberate failure", http.StatusInternalServerError)
}

// compute fans out to a second traced layer, and to the downstream instance
// when one is configured, so a single request shows several indentation
// levels.
func (s *service) compute(ctx context.Context) (int, error) {
	total := 0

	for i := 1; i <= 3; i++ {
		out, err := s.interceptor.Around(ctx, logtrace.Invocation{
			Signature: logtrace.ShortSignature(logtrace.FuncSignature((*service).step)),
		}, func(ctx context.Context) (any, error) {
			return s.step(ctx, i)
		})
		if err != nil {
			return 0, err
		}
		total += out.(int)
	}

	if s.downstream != "" {
		if err := s.callDownstream(ctx); err != nil {
			return 0, err
		}
	}

	return total, nil
}

func (s *service) step(ctx context.Context, i int) (int, error) {
	time.Sleep(time.Duration(i) * time.Millisecond)
	return i * i, nil
}

func (s *service) callDownstream(ctx context.Context) error {
	_, err := s.interceptor.Around(ctx, logtrace.Invocation{
		Signature: "GET " + s.downstream,
	}, func(ctx context.Context) (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.downstream, nil)
		if err != nil {
			return nil, err
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("downstream: HTTP %d", resp.StatusCode)
		}
		return resp.StatusCode, nil
	})
	return err
}
