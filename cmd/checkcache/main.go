// Command checkcache inspects and maintains a redis backed cache.
//
//	checkcache -config cache.yaml size
//	checkcache -config cache.yaml regions
//	checkcache -config cache.yaml stats
//	checkcache -config cache.yaml clear -region users
//	checkcache -config cache.yaml clear-all
//	checkcache -config cache.yaml remove -region users -key user-42
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/checkcache"
	zaplog "github.com/unkn0wn-root/checkcache/log/zap"
	"github.com/unkn0wn-root/checkcache/provider/redis"
)

var errUsage = errors.New("usage: checkcache -config file.yaml <size|regions|stats|clear|clear-all|remove> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("checkcache", flag.ContinueOnError)
	cfgPath := fs.String("config", "checkcache.yaml", "path to the YAML backend config")
	timeout := fs.Duration("timeout", 30*time.Second, "overall deadline")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cfg, err := redis.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}

	zcfg := zap.NewProductionConfig()
	if *verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := zcfg.Build()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	logger := zaplog.New(zl)

	cfg.OnAsyncError = func(op, key string, err error) {
		logger.Warn("async write failed", checkcache.Fields{"op": op, "key": key, "err": err})
	}
	backend, err := redis.New(cfg)
	if err != nil {
		return err
	}

	svc, err := checkcache.New(checkcache.Options{Backend: backend, Logger: logger})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	defer func() { _ = svc.Close(context.WithoutCancel(ctx)) }()

	return dispatch(ctx, svc, fs.Arg(0), fs.Args()[1:], out)
}

func dispatch(ctx context.Context, svc *checkcache.Service, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "size":
		n, err := svc.Size(ctx)
		if err != nil {
			return err
		}
		return emit(out, map[string]int64{"keys": n})

	case "regions":
		sizes, err := svc.SizeByRegion(ctx)
		if err != nil {
			return err
		}
		return emit(out, sizes)

	case "stats":
		st, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		return emit(out, st)

	case "clear":
		fs := flag.NewFlagSet("clear", flag.ContinueOnError)
		region := fs.String("region", "", "region to clear; empty clears keys stored without one")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return svc.Clear(ctx, *region)

	case "clear-all":
		return svc.ClearAll(ctx)

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ContinueOnError)
		region := fs.String("region", "", "region of the key")
		key := fs.String("key", "", "logical key to remove")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return svc.Remove(ctx, *key, *region)

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func emit(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
