// Package kmain wires the kernel subsystems together. A single Kernel value
// owns every subsystem; the interrupt entry points reach it through one
// package-level pointer since the CPU passes them no other context.
package kmain

import (
	"github.com/Anonimek123-dev/COSMOS-C/device"
	"github.com/Anonimek123-dev/COSMOS-C/device/input"
	"github.com/Anonimek123-dev/COSMOS-C/device/ps2"
	"github.com/Anonimek123-dev/COSMOS-C/device/tty"
	"github.com/Anonimek123-dev/COSMOS-C/device/video/console"
	"github.com/Anonimek123-dev/COSMOS-C/kernel"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/cpu"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/gate"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/hal"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/irq"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/kfmt"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/lineedit"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/multiboot"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/sync"
	"github.com/Anonimek123-dev/COSMOS-C/kernel/timer"
)

var (
	errNoTerminal = &kernel.Error{Module: "kmain", Message: "no terminal attached to a console"}

	// active is the kernel that interrupt handlers operate on.
	active *Kernel

	// The kernel image has no heap so the kernel state is allocated
	// statically.
	bootKernel Kernel
	bootVGA    console.VgaTextConsole
	bootGuard  sync.IRQGuard

	// mocked by tests
	cpuEnableInterruptsFn = cpu.EnableInterrupts
	cpuVendorFn           = cpu.Vendor
)

// ConsoleDriver is a console that can be initialized by the HAL.
type ConsoleDriver interface {
	console.Device
	device.Driver
}

// Platform describes the machine the kernel runs on.
type Platform struct {
	// Bus performs port I/O for every driver.
	Bus cpu.Bus

	// Console receives the terminal output.
	Console ConsoleDriver

	// Guard serializes timeout scheduling with the timer interrupt. A nil
	// Guard is only safe if interrupts are delivered synchronously.
	Guard sync.Guard

	// Wait is called by Sleep between polls of the tick counter. A nil
	// Wait halts the CPU until the next interrupt.
	Wait func()

	// LoadIDT installs the interrupt table into the CPU. Hosted machines
	// deliver interrupts through gate.Raise and leave it unset.
	LoadIDT bool
}

// Kernel owns every subsystem of the running kernel.
type Kernel struct {
	cfg      Config
	platform Platform

	idt        gate.Table
	pic        irq.Controller
	dispatcher irq.Dispatcher
	pit        timer.PIT
	clock      timer.Clock
	ring       input.Ring
	keyboard   ps2.Keyboard
	vt         tty.VT
	registry   device.Registry
	devices    hal.Devices
	editor     lineedit.Editor
	shell      shell
}

// Init prepares k for Boot without touching any hardware.
func (k *Kernel) Init(p Platform, cfg Config) {
	k.cfg = cfg
	k.platform = p

	k.pic.Init(p.Bus)
	k.dispatcher.Init(&k.pic, nil)
	k.clock.Init(p.Guard, p.Wait)
	k.pit.Init(p.Bus, cfg.TickRate)
	k.ring.Reset()
	k.keyboard.Init(p.Bus, &k.ring, nil)
	k.vt.Init(tty.DefaultTabWidth, tty.DefaultScrollback)
	k.registry = device.Registry{}
	k.devices = hal.Devices{}
	k.shell.init(k)
}

// Boot installs the interrupt table, remaps the interrupt controllers,
// brings up the drivers and prints the first prompt. Interrupts are left
// disabled; the caller enables them once Boot returns.
func (k *Kernel) Boot() *kernel.Error {
	active = k

	k.idt.Init()
	gate.SetDispatcher(dispatch)
	if k.platform.LoadIDT {
		k.idt.Load()
	}

	k.dispatcher.HandleLine(irq.TimerLine, timerIRQ)
	k.dispatcher.HandleLine(irq.KeyboardLine, keyboardIRQ)
	if err := k.pic.Remap(gate.IRQBase, gate.IRQBase+8); err != nil {
		return err
	}

	k.registry.Register(device.DetectOrderEarly, k.platform.Console)
	k.registry.Register(device.DetectOrderTerminal, &k.vt)
	k.registry.Register(device.DetectOrderTimer, &k.pit)
	k.registry.Register(device.DetectOrderInput, &k.keyboard)
	k.devices.Probe(&k.registry)

	if k.devices.ActiveTTY() == nil || k.devices.ActiveConsole() == nil {
		return errNoTerminal
	}

	k.vt.SetColors(uint8(k.cfg.Fg), uint8(k.cfg.Bg))
	vendor := cpuVendorFn()
	kfmt.Printf("COSMOS ready on %s, timer at %d Hz. Type help for a list of commands.\n", vendor[:], k.pit.Frequency())

	k.editor.Init(&k.vt, &k.shell, k.cfg.Prompt, k.cfg.BlinkThreshold)
	k.editor.Start()
	return nil
}

// Update runs one iteration of the main loop: due reminders are printed and
// at most one key event is handed to the line editor. It returns true if a
// key was processed.
func (k *Kernel) Update() bool {
	k.shell.flushReminders()
	return k.editor.Poll(&k.ring)
}

// Clock returns the kernel tick counter.
func (k *Kernel) Clock() *timer.Clock {
	return &k.clock
}

// Terminal returns the kernel terminal.
func (k *Kernel) Terminal() *tty.VT {
	return &k.vt
}

// Editor returns the shell line editor.
func (k *Kernel) Editor() *lineedit.Editor {
	return &k.editor
}

// Dispatcher returns the interrupt dispatcher.
func (k *Kernel) Dispatcher() *irq.Dispatcher {
	return &k.dispatcher
}

// dispatch is the handler of every interrupt entry stub.
func dispatch(vector gate.InterruptNumber) {
	if k := active; k != nil {
		k.dispatcher.Handle(vector)
	}
}

// timerIRQ services IRQ0.
func timerIRQ() {
	active.clock.Tick()
}

// keyboardIRQ services IRQ1.
func keyboardIRQ() {
	active.keyboard.HandleIRQ()
}

// Kmain is the only Go symbol that is visible (exported) from the rt0 initialization
// code. This function is invoked by the rt0 assembly code after setting up the GDT
// and setting up a a minimal g0 struct that allows Go code using the 4K stack
// allocated by the assembly code.
//
// The rt0 code passes the address of the multiboot info payload provided by the
// bootloader.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	if name := multiboot.BootLoaderName(); name != "" {
		kfmt.Printf("[kmain] booted by %s\n", name)
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyCmdLine(multiboot.CommandLine()); err != nil {
		kfmt.Printf("[%s] %s; using defaults for bad values\n", err.Module, err.Message)
	}

	columns, rows := uint32(80), uint32(25)
	if fb := multiboot.GetFramebufferInfo(); fb != nil && fb.Type == multiboot.FramebufferTypeEGA {
		columns, rows = fb.Width, fb.Height
	}
	bootVGA.Init(columns, rows, cpu.HardwareBus{})

	bootKernel.Init(Platform{
		Bus:     cpu.HardwareBus{},
		Console: &bootVGA,
		Guard:   &bootGuard,
		LoadIDT: true,
	}, cfg)

	if err := bootKernel.Boot(); err != nil {
		kfmt.Panic(err)
	}

	cpuEnableInterruptsFn()
	for {
		bootKernel.Update()
	}
}
