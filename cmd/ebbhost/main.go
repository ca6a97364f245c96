// Command ebbhost is the host-side console for an EBB-class motion
// controller: it either talks to a real board over a serial port, or runs
// entirely in-process against controller.Controller for bench testing
// without hardware attached.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"ebbcore/config"
	"ebbcore/controller"
	"ebbcore/frontend"
	serialpkg "ebbcore/serial"
)

var (
	device     = flag.String("device", "", "Serial device path; empty runs an in-process loopback controller")
	baud       = flag.Int("baud", 9600, "Baud rate (ignored by USB CDC boards)")
	configPath = flag.String("config", "", "Path to a machine configuration JSON file (loopback mode only)")
)

func main() {
	flag.Parse()

	if *device == "" {
		runLoopback()
		return
	}
	if err := runSerial(*device, *baud); err != nil {
		fmt.Fprintf(os.Stderr, "ebbhost: %v\n", err)
		os.Exit(1)
	}
}

// runLoopback drives a Controller directly, with no hardware or stepper
// backend: steps are simply discarded. Useful for exercising the command
// language and motion planner from a terminal.
func runLoopback() {
	cfg := controller.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ebbhost: reading config: %v\n", err)
			os.Exit(1)
		}
		mcfg, err := config.Load(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ebbhost: parsing config: %v\n", err)
			os.Exit(1)
		}
		cfg = controller.Config{
			TickHz:      mcfg.TickHz,
			FifoDepth:   mcfg.FifoDepth,
			LimitChecks: mcfg.LimitChecks,
			AckEnable:   mcfg.AckEnable,
		}
	}

	ctrl := controller.New(cfg, nil)
	dispatcher := frontend.NewDispatcher(ctrl)

	stop := make(chan struct{})
	go tickLoop(ctrl, cfg.TickHz, stop)
	defer close(stop)

	fmt.Println("ebbhost loopback: no hardware attached, steps are discarded")
	runREPL(func(line string) string {
		return dispatcher.Handle(line)
	})
}

func tickLoop(ctrl *controller.Controller, tickHz uint32, stop <-chan struct{}) {
	if tickHz == 0 {
		tickHz = 25000
	}
	period := time.Second / time.Duration(tickHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctrl.Tick()
		}
	}
}

// runSerial opens a real serial connection and relays typed commands to it,
// printing whatever comes back.
func runSerial(devicePath string, baudRate int) error {
	cfg := serialpkg.DefaultConfig(devicePath)
	cfg.Baud = baudRate

	port, err := serialpkg.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening %s: %w", devicePath, err)
	}
	defer port.Close()

	reader := bufio.NewReader(port)
	fmt.Printf("ebbhost connected to %s\n", devicePath)

	runREPL(func(line string) string {
		if _, err := port.Write([]byte(line + "\r")); err != nil {
			return fmt.Sprintf("write error: %v\n", err)
		}
		if err := port.Flush(); err != nil {
			return fmt.Sprintf("flush error: %v\n", err)
		}
		resp, err := reader.ReadString('\r')
		if err != nil {
			return fmt.Sprintf("read error: %v\n", err)
		}
		return resp
	})
	return nil
}

// runREPL reads lines from stdin, tokenizes them shell-style so a user can
// type space-separated arguments ("SM 1000 100 0") instead of the wire
// format's commas, and hands the rejoined line to send.
func runREPL(send func(line string) string) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if raw == "quit" || raw == "exit" {
			return
		}

		tokens, err := shlex.Split(raw)
		if err != nil || len(tokens) == 0 {
			fmt.Fprintf(os.Stderr, "ebbhost: cannot parse %q: %v\n", raw, err)
			continue
		}
		line := tokens[0]
		if len(tokens) > 1 {
			line += "," + strings.Join(tokens[1:], ",")
		}

		fmt.Print(send(line))
	}
}
