// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwbench

import (
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// DefaultMaxDeltas is the default maximum number of evaluation passes allowed
// for a circuit to settle after a change.
//
const DefaultMaxDeltas = 1000

// Phase identifies the scheduling point a circuit was last advanced to.
//
type Phase int

// Scheduling points.
//
const (
	PhaseInit        Phase = iota // circuit built, no wait yet
	PhaseRisingEdge               // a rising edge of Clk occurred, registers not yet visible
	PhaseFallingEdge              // a falling edge of Clk occurred
	PhaseReadOnly                 // all activity at the current time has settled
	PhaseNextStep                 // start of the next time step
	PhaseTimer                    // a timer expired
)

var phaseNames = [...]string{
	PhaseInit:        "init",
	PhaseRisingEdge:  "rising_edge",
	PhaseFallingEdge: "falling_edge",
	PhaseReadOnly:    "read_only",
	PhaseNextStep:    "next_time_step",
	PhaseTimer:       "timer",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
	return phaseNames[p]
}

type edgeKind int

const (
	noEdge edgeKind = iota
	risingEdge
	fallingEdge
)

type write struct {
	n int
	v uint64
}

type constKey struct {
	width int
	v     uint64
}

// Circuit is a runnable circuit simulation driven by a clock and by writes
// from a test driver.
//
// Time only advances through the wait methods: RisingEdge, FallingEdge,
// ReadOnly, NextTimeStep and Timer. Values written with Write are staged and
// applied when the next wait method is called.
//
// A Circuit is not safe for concurrent use.
//
type Circuit struct {
	bus
	cs        []Component
	clk       int // Clk signal number
	clock     Clock
	now       Time
	phase     Phase
	edge      edgeKind // edge being evaluated
	pending   bool     // an edge has been evaluated but not committed
	writes    []write
	params    map[string]int
	consts    map[constKey]int
	maxDeltas int
	deltas    uint64

	wc []chan struct{}
	wg sync.WaitGroup
}

// NewCircuit builds a new circuit based on the given parts.
//
// Wires connected to part inputs but driven by no part output become inputs
// of the circuit and can be written by a test driver. The Params of the given
// parts are merged into the circuit parameters; parts declaring different
// values for the same parameter are an error.
//
// workers is the number of goroutines used to evaluate components each pass.
// If less or equal to 0, the value of GOMAXPROCS will be used. With a single
// worker, components are evaluated by the calling goroutine.
//
// Callers must make sure to call Dispose() once the circuit is no longer
// needed in order to release allocated resources.
//
func NewCircuit(workers int, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	cc := &Circuit{
		params:    make(map[string]int),
		consts:    make(map[constKey]int),
		maxDeltas: DefaultMaxDeltas,
	}
	cc.clk = cc.alloc(Clk, 1)
	cc.driven[cc.clk] = true

	for _, p := range parts {
		for k, v := range p.Params {
			if pv, ok := cc.params[k]; ok && pv != v {
				return nil, errors.Wrapf(ErrConfig, "parameter %s: %s sets %d, previously set to %d", k, p.Name, v, pv)
			}
			cc.params[k] = v
		}
	}

	wrap, err := newChip("CIRCUIT", nil, nil, parts, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	ups := wrap.Mount(newSocket(cc))
	cc.cs = ups

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers > 1 {
		for len(ups) > 0 {
			size := len(ups) / workers
			if size*workers < len(ups) {
				size++
			}
			wc := make(chan struct{}, 1)
			cc.wc = append(cc.wc, wc)
			go worker(cc, ups[:size], wc)
			ups = ups[size:]
		}
	}

	if err = cc.settle(); err != nil {
		cc.Dispose()
		return nil, errors.Wrap(err, "initial state")
	}
	return cc, nil
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

// constant returns a driven signal holding the constant value v.
//
func (c *Circuit) constant(width int, v uint64) int {
	k := constKey{width, v}
	if n, ok := c.consts[k]; ok {
		return n
	}
	n := c.alloc("#"+strconv.FormatUint(v, 10), width)
	c.driven[n] = true
	c.force(n, v)
	c.consts[k] = n
	return n
}

// Get returns the committed value of signal n. The value of n should be
// obtained in a MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Get(n int) uint64 {
	return c.s0[n]
}

// Set sets the next value of signal n. The value is masked to the signal
// width.
//
func (c *Circuit) Set(n int, v uint64) {
	c.s1[n] = v & c.sigs[n].Mask()
}

// Rising returns true while components are evaluated for a rising edge of
// Clk.
//
func (c *Circuit) Rising() bool { return c.edge == risingEdge }

// Falling returns true while components are evaluated for a falling edge of
// Clk.
//
func (c *Circuit) Falling() bool { return c.edge == fallingEdge }

// Now returns the current simulation time.
//
func (c *Circuit) Now() Time { return c.now }

// Phase returns the scheduling point reached by the last wait.
//
func (c *Circuit) Phase() Phase { return c.phase }

// Clock returns the circuit clock.
//
func (c *Circuit) Clock() *Clock { return &c.clock }

// Start starts the circuit clock with the given period at the current time.
// Clk is driven low for the first half period.
//
func (c *Circuit) Start(period Time) error {
	if err := c.clock.Start(c.now, period); err != nil {
		return err
	}
	c.force(c.clk, 0)
	return nil
}

// Param returns the value of the named circuit parameter.
//
func (c *Circuit) Param(name string) (int, bool) {
	v, ok := c.params[name]
	return v, ok
}

// Params returns a copy of the circuit parameters.
//
func (c *Circuit) Params() map[string]int {
	m := make(map[string]int, len(c.params))
	for k, v := range c.params {
		m[k] = v
	}
	return m
}

// Signals returns the declarations of all signals in the circuit.
//
func (c *Circuit) Signals() []Signal {
	return append([]Signal(nil), c.sigs...)
}

// Inputs returns the sorted names of the signals that can be written by a
// test driver.
//
func (c *Circuit) Inputs() []string {
	var in []string
	for i, s := range c.sigs {
		if !c.driven[i] {
			in = append(in, s.Name)
		}
	}
	sort.Strings(in)
	return in
}

// Lookup returns the declaration of the named signal.
//
func (c *Circuit) Lookup(name string) (Signal, error) {
	n, err := c.lookup(name)
	if err != nil {
		return Signal{}, err
	}
	return c.sigs[n], nil
}

// Read returns the committed value of the named signal. After RisingEdge
// returns, Read still sees pre-edge register outputs.
//
func (c *Circuit) Read(name string) (uint64, error) {
	n, err := c.lookup(name)
	if err != nil {
		return 0, err
	}
	return c.s0[n], nil
}

// Write stages value v for the named input signal. Staged values are applied
// at the current time when the next wait method is called.
//
// Writing a signal driven by a part, writing during the read-only phase or
// writing an unknown signal returns an error wrapping ErrProtocol. Values
// wider than the signal return an error wrapping ErrWidth.
//
func (c *Circuit) Write(name string, v uint64) error {
	if c.phase == PhaseReadOnly {
		return errors.Wrapf(ErrProtocol, "write %s in read-only phase", name)
	}
	n, err := c.lookup(name)
	if err != nil {
		return err
	}
	if c.driven[n] {
		return errors.Wrapf(ErrProtocol, "signal %s is driven by the circuit", name)
	}
	if err = c.sigs[n].Check(v); err != nil {
		return err
	}
	c.writes = append(c.writes, write{n, v})
	return nil
}

// Deltas returns the total number of evaluation passes run so far.
//
func (c *Circuit) Deltas() uint64 { return c.deltas }

// SetMaxDeltas sets the maximum number of evaluation passes allowed for the
// circuit to settle. Values less or equal to 0 reset it to DefaultMaxDeltas.
//
func (c *Circuit) SetMaxDeltas(n int) {
	if n <= 0 {
		n = DefaultMaxDeltas
	}
	c.maxDeltas = n
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// eval runs one evaluation pass of all components. s1 starts as a copy of s0
// so that signals without a driver keep their value.
//
func (c *Circuit) eval() {
	copy(c.s1, c.s0)
	c.deltas++
	if len(c.wc) == 0 {
		for _, f := range c.cs {
			f(c)
		}
		return
	}
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}
	c.wg.Wait()
}

// settle evaluates the circuit until no signal changes.
//
func (c *Circuit) settle() error {
	for i := 0; i < c.maxDeltas; i++ {
		c.eval()
		if c.stable() {
			return nil
		}
		c.swap()
	}
	return errors.Wrapf(ErrUnstable, "no stable state after %d passes at %v", c.maxDeltas, c.now)
}

// commit makes the results of a pending edge visible.
//
func (c *Circuit) commit() error {
	if !c.pending {
		return nil
	}
	c.pending = false
	c.swap()
	return c.settle()
}

// flush commits any pending edge then applies staged writes.
//
func (c *Circuit) flush() error {
	if err := c.commit(); err != nil {
		return err
	}
	if len(c.writes) == 0 {
		return nil
	}
	for _, w := range c.writes {
		c.force(w.n, w.v)
	}
	c.writes = c.writes[:0]
	return c.settle()
}

// Settle applies staged writes and lets the circuit settle without advancing
// time.
//
func (c *Circuit) Settle() error {
	return c.flush()
}

// tick advances time to the next clock edge and evaluates all components for
// that edge. The edge is left pending.
//
func (c *Circuit) tick() bool {
	c.now = c.clock.next
	rising := c.clock.toggle()
	var v uint64
	c.edge = fallingEdge
	if rising {
		v = 1
		c.edge = risingEdge
	}
	c.force(c.clk, v)
	c.eval()
	c.edge = noEdge
	c.pending = true
	return rising
}

func (c *Circuit) waitEdge(rising bool, p Phase) error {
	if err := c.flush(); err != nil {
		return err
	}
	if !c.clock.running {
		return errors.Wrapf(ErrProtocol, "wait for %v with stopped clock", p)
	}
	for c.tick() != rising {
		if err := c.commit(); err != nil {
			return err
		}
	}
	c.phase = p
	return nil
}

// RisingEdge advances the simulation to the next rising edge of Clk.
//
// When it returns, registers have sampled their inputs but Read still
// returns the values from before the edge. Writes staged after RisingEdge
// are applied once the edge results are committed, at the next wait.
//
func (c *Circuit) RisingEdge() error {
	return c.waitEdge(true, PhaseRisingEdge)
}

// FallingEdge advances the simulation to the next falling edge of Clk.
//
func (c *Circuit) FallingEdge() error {
	return c.waitEdge(false, PhaseFallingEdge)
}

// ReadOnly lets all activity at the current time settle, including any
// pending edge and staged writes. Writes are rejected until the next wait.
//
func (c *Circuit) ReadOnly() error {
	if err := c.flush(); err != nil {
		return err
	}
	c.phase = PhaseReadOnly
	return nil
}

// NextTimeStep advances the simulation to the next time step. Like Timer, it
// runs through a clock edge due at that time: with a 2ps period, a
// NextTimeStep after an edge also processes the next one. Use periods of at
// least MinPeriod to keep them apart.
//
func (c *Circuit) NextTimeStep() error {
	return c.advance(c.now+Picosecond, PhaseNextStep)
}

// Timer advances the simulation by d, running through any clock edges in
// between. d must not be 0.
//
func (c *Circuit) Timer(d Time) error {
	if d == 0 {
		return errors.Wrap(ErrProtocol, "zero timer duration")
	}
	return c.advance(c.now+d, PhaseTimer)
}

func (c *Circuit) advance(t Time, p Phase) error {
	if err := c.flush(); err != nil {
		return err
	}
	for c.clock.running && c.clock.next <= t {
		c.tick()
		if err := c.commit(); err != nil {
			return err
		}
	}
	c.now = t
	c.phase = p
	return nil
}
