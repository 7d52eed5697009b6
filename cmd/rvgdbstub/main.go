// Command rvgdbstub bridges a GDB Remote Serial Protocol client to a
// RISC-V v0.13 Debug Module, per spec.md §9 "Accept loop": a listener
// accepts one debugger connection at a time, runs the front-end loop to
// completion, and only then accepts the next. Flag parsing and process
// wiring live here; the front end (package rsp) and back end (package
// dm) know nothing about cobra, sockets, or files.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rvgdbstub/dm"
	"rvgdbstub/rsp"
	"rvgdbstub/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	listenAddr string
	ptyMode    bool
	serialPath string
	dmiSerial  string
	sim        bool
	xlen       int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "rvgdbstub",
		Short: "GDB remote-serial-protocol stub for a RISC-V v0.13 Debug Module",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.listenAddr, "listen", "127.0.0.1:3333", "TCP address to accept debugger connections on")
	f.BoolVar(&flags.ptyMode, "pty", false, "expose the debugger-facing side as a pseudo-terminal instead of TCP")
	f.StringVar(&flags.serialPath, "dmi-device", "", "serial device path the Debug Module is reached through (SerialDMI)")
	f.BoolVar(&flags.sim, "sim", false, "use an in-memory simulated Debug Module instead of a real DMI transport")
	f.IntVar(&flags.xlen, "xlen", 64, "target register width (32 or 64)")
	f.BoolVar(&flags.verbose, "verbose", false, "enable debug-level logging")
	return cmd
}

func run(flags *rootFlags) error {
	log := newLogger(flags.verbose)

	dmiTransport, err := buildDMITransport(flags, log)
	if err != nil {
		return err
	}

	cfg := dm.NewConfig(dm.WithXLen(flags.xlen))
	backend := dm.NewBackend(dmiTransport, cfg, log)
	backend.Init()

	if flags.ptyMode {
		return runPTY(backend, log)
	}
	return runTCP(flags.listenAddr, backend, log)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func buildDMITransport(flags *rootFlags, log zerolog.Logger) (dm.Transport, error) {
	if flags.sim {
		log.Info().Msg("using simulated debug module")
		return transport.NewSimDMI(64 << 20), nil
	}
	if flags.serialPath == "" {
		return nil, fmt.Errorf("one of --sim or --dmi-device is required")
	}
	port, err := transport.OpenPort(flags.serialPath)
	if err != nil {
		return nil, err
	}
	if err := port.MakeRaw(); err != nil {
		return nil, err
	}
	return transport.NewSerialDMI(port, time.Second), nil
}

// runTCP implements the serialized accept loop: one session at a time,
// run to completion, then accept the next.
func runTCP(addr string, backend *dm.Backend, log zerolog.Logger) error {
	ln, err := transport.ListenTCP(addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info().Str("addr", ln.Addr().String()).Msg("listening for debugger connections")

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		log.Info().Msg("debugger connected")
		if err := serveOne(conn, backend, log); err != nil {
			log.Warn().Err(err).Msg("session ended with error")
		}
	}
}

func runPTY(backend *dm.Backend, log zerolog.Logger) error {
	master, slave, err := transport.OpenPTY(nil)
	if err != nil {
		return err
	}
	defer slave.Close()
	name, err := master.PTSName()
	if err == nil {
		log.Info().Str("pty", name).Msg("debugger stream available")
	}
	return serveOne(master, backend, log)
}

func serveOne(stream transport.CommandStream, backend *dm.Backend, log zerolog.Logger) error {
	stop, err := transport.NewPipeStopSignal()
	if err != nil {
		return err
	}
	defer stop.Close()

	sess := rsp.NewSession(stream, stop, backend, log)
	sess.SetAutoClose(true)
	return sess.Run()
}
