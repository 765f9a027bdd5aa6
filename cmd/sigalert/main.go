// Command sigalert is the CLI front-end spec §6 names: one subcommand per
// sink (stdout, file, matrix_room), list_signals to enumerate the Signal
// Registry, and serve-api to run the Admin API plus queue worker. Flag
// parsing follows the teacher's cmd/main.go use of the standard flag
// package rather than a CLI framework (see DESIGN.md).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"sigalert/internal/alertcfg"
	"sigalert/internal/app"
	"sigalert/internal/config"
	"sigalert/internal/queue"
	"sigalert/internal/sink"
	"sigalert/internal/signal"
	"sigalert/internal/store"
	"sigalert/pkg/matrix"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logFlags := log.LstdFlags
	args := os.Args[1:]
	for i, a := range args {
		if a == "-v" || a == "--verbose" {
			logFlags |= log.Lmicroseconds | log.Lshortfile
			args = append(args[:i], args[i+1:]...)
			break
		}
	}
	os.Args = append(os.Args[:1], args...)

	logger := log.New(os.Stderr, "sigalert: ", logFlags)
	cfg := config.FromEnv()

	var err error
	switch os.Args[1] {
	case "stdout":
		err = runStdout(cfg, logger, os.Args[2:])
	case "file":
		err = runFile(cfg, logger, os.Args[2:])
	case "matrix_room":
		err = runMatrixRoom(cfg, logger, os.Args[2:])
	case "list_signals":
		err = runListSignals(cfg)
	case "serve-api":
		err = runServeAPI(cfg, logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sigalert <stdout|file|matrix_room|list_signals|serve-api> [flags]")
}

func runStdout(cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("stdout", flag.ExitOnError)
	alertsPath := fs.String("file", "", "path to the alerts YAML file")
	fs.Parse(args)

	alerts, err := alertcfg.LoadCollection(*alertsPath)
	if err != nil {
		return err
	}

	p := app.NewProcess(cfg, logger)
	p.ScheduleAlerts(alerts, sink.Stdout(os.Stdout), "stdout")
	p.WaitForShutdown()
	return nil
}

func runFile(cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("file", flag.ExitOnError)
	alertsPath := fs.String("file", "", "path to the alerts YAML file")
	outPath := fs.String("out", "", "path to append rendered alert messages to")
	fs.Parse(args)

	alerts, err := alertcfg.LoadCollection(*alertsPath)
	if err != nil {
		return err
	}

	p := app.NewProcess(cfg, logger)
	p.ScheduleAlerts(alerts, sink.File(*outPath), "file")
	p.WaitForShutdown()
	return nil
}

func runMatrixRoom(cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("matrix_room", flag.ExitOnError)
	alertsPath := fs.String("file", "", "path to the alerts YAML file")
	host := fs.String("host", "", "Synapse host")
	user := fs.String("user", "", "Matrix username")
	password := fs.String("password", "", "Matrix password")
	fs.Parse(args)

	alerts, err := alertcfg.LoadCollection(*alertsPath)
	if err != nil {
		return err
	}

	st := store.New(store.Config{Host: cfg.RedisHost, Port: cfg.RedisPort}, logger)

	roomCache, err := matrix.LoadRoomCache(cfg.RoomCachePath)
	if err != nil {
		return err
	}
	matrixClient := matrix.New(matrix.Config{Host: *host, User: *user, Password: *password}, roomCache, logger)

	p := app.NewProcess(cfg, logger)
	worker := queue.NewWorker(st, matrixClient, p.Metrics, logger, cfg.DeliveryInterval)
	go worker.Run(p.Ctx)

	p.ScheduleAlerts(alerts, sink.Matrix(st), "matrix")
	p.WaitForShutdown()

	return st.Close()
}

func runListSignals(cfg config.Config) error {
	registry := signal.NewRegistry()
	signal.RegisterHostSignals(registry, cfg.DiskMountPoint)
	signal.RegisterBTCSignals(registry, cfg.GlassnodeAPIKey)

	for _, name := range registry.Names() {
		fmt.Println(name)
	}
	return nil
}

func runServeAPI(cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("serve-api", flag.ExitOnError)
	addr := fs.String("addr", cfg.AdminAddr, "address for the Admin API to listen on")
	fs.Parse(args)
	cfg.AdminAddr = *addr

	srv, err := app.NewAdminServer(cfg, logger)
	if err != nil {
		return err
	}
	return srv.Run()
}
