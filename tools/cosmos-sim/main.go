// Command cosmos-sim runs the kernel on an emulated PC inside a host
// terminal, or replays a scripted keyboard trace headlessly and dumps the
// final screen.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Anonimek123-dev/COSMOS-C/emulator"
	"github.com/Anonimek123-dev/COSMOS-C/emulator/keyboard"
	"github.com/Anonimek123-dev/COSMOS-C/emulator/pit"
	"github.com/Anonimek123-dev/COSMOS-C/emulator/terminal"
	"github.com/Anonimek123-dev/COSMOS-C/emulator/trace"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/gate"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kmain"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/sync"
	"github.com/gdamore/tcell"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

var (
	replayPath = flag.String("replay", "", "replay a keyboard trace instead of reading the terminal")
	dumpPath   = flag.String("dump", "", "write the final screen to this file (replay mode)")
	cmdLine    = flag.String("cmdline", "", "kernel command line, e.g. \"tickrate=100 fg=green\"")
	speed      = flag.Float64("speed", 1, "emulated clock speed multiplier")
	blink      = flag.Uint("blink", 500, "idle polls between cursor blinks unless set by -cmdline")

	errNotTerminal = errors.New("stdin is not a terminal; use -replay for headless runs")
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[cosmos-sim] error: %s\n", err.Error())
	os.Exit(1)
}

func logf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[cosmos-sim] "+format+"\n", args...)
}

// sim is an emulated PC running a kernel.
type sim struct {
	machine *emulator.Machine
	timer   *pit.Timer
	kbd     *keyboard.Controller
	cons    *terminal.Console
	kernel  *kmain.Kernel
	cfg     kmain.Config
}

func newSim(screen tcell.Screen, cfg kmain.Config) (*sim, error) {
	s := &sim{cfg: cfg}

	s.machine = emulator.New(func(vector uint8) {
		gate.Raise(gate.InterruptNumber(vector))
	})
	s.timer = pit.New(s.machine.RaiseIRQ, *speed)
	s.kbd = keyboard.New(s.machine.RaiseIRQ)
	s.machine.Install(s.timer, pit.Channel0Port, pit.CommandPort)
	s.machine.Install(s.kbd, keyboard.DataPort, keyboard.StatusPort)

	s.cons = terminal.New(screen, terminal.DefaultWidth, terminal.DefaultHeight)
	s.kernel = new(kmain.Kernel)
	s.kernel.Init(kmain.Platform{
		Bus:     s.machine,
		Console: s.cons,
		Guard:   sync.NopGuard{},
		Wait:    s.machine.Halt,
	}, cfg)

	var bootErr error
	s.machine.Step(func() {
		if err := s.kernel.Boot(); err != nil {
			bootErr = fmt.Errorf("boot: [%s] %s", err.Module, err.Message)
		}
	})
	if bootErr != nil {
		s.timer.Close()
		return nil, bootErr
	}

	s.machine.Start()
	s.cons.Show()
	return s, nil
}

// step runs one main loop iteration and halts until the next interrupt if
// there was nothing to do. It returns true if a key was handled.
func (s *sim) step() bool {
	var busy bool
	s.machine.Step(func() {
		if busy = s.kernel.Update(); !busy {
			s.machine.Halt()
		}
	})
	s.cons.Show()
	return busy
}

// settle runs the kernel until all typed input has been handled and then
// for d of emulated time.
func (s *sim) settle(d time.Duration) {
	for {
		pending := s.kbd.Pending()
		if !s.step() && pending == 0 {
			break
		}
	}

	if d <= 0 {
		return
	}

	ticks := uint64(d.Milliseconds()) * uint64(s.cfg.TickRate) / 1000
	var start, now uint64
	s.machine.Step(func() { start = s.kernel.Clock().Uptime() })
	for now < start+ticks {
		s.step()
		s.machine.Step(func() { now = s.kernel.Clock().Uptime() })
	}
}

func (s *sim) close() {
	s.timer.Close()
	s.machine.Stop()
}

func runInteractive(cfg kmain.Config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errNotTerminal
	}

	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.DisableMouse()

	s, err := newSim(screen, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	quit := make(chan struct{})
	go func() {
		defer close(quit)

		var codes []uint8
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyF12 {
					return
				}
				var ok bool
				if codes, ok = terminal.Scancodes(codes[:0], ev); ok {
					s.kbd.Type(codes...)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		default:
			s.step()
		}
	}
}

func runReplay(cfg kmain.Config) error {
	fs := afero.NewOsFs()

	steps, err := trace.Load(fs, *replayPath)
	if err != nil {
		return err
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.SetSize(terminal.DefaultWidth, terminal.DefaultHeight)

	s, err := newSim(screen, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	start := time.Now()
	trace.Play(steps, s.kbd, s.settle)
	logf("replayed %d steps in %v", len(steps), time.Since(start).Round(time.Millisecond))

	var dumpErr error
	s.machine.Step(func() {
		if *dumpPath == "" {
			dumpErr = s.kernel.Terminal().DumpTo(os.Stdout)
			return
		}
		dumpErr = trace.WriteDump(fs, *dumpPath, s.kernel.Terminal())
	})
	if dumpErr == nil && *dumpPath != "" {
		logf("screen written to %s", *dumpPath)
	}
	return dumpErr
}

func main() {
	flag.Parse()

	cfg := kmain.DefaultConfig()
	cfg.BlinkThreshold = uint32(*blink)
	if err := cfg.ApplyCmdLine(*cmdLine); err != nil {
		logf("[%s] %s; using defaults for bad values", err.Module, err.Message)
	}

	var err error
	if *replayPath != "" {
		err = runReplay(cfg)
	} else {
		err = runInteractive(cfg)
	}
	if err != nil {
		exit(err)
	}
}
