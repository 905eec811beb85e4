package syncsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// W is a set of wires, connecting a part's I/O pins (the map key) to wires in
// the circuit.
//
// Both keys and values accept bus ranges: W{"out[0..6]": "bus[1..7]"}. A bus
// name without index connects a whole bus: W{"out": "uo_out"}.
//
type W map[string]string

// expand resolves w against the pins of sp. It returns, for each pin of the
// part, the circuit wires connected to it.
//
// A key naming a bus of sp without index stands for all pins of that bus:
// W{"out": "x"} maps out[i] to x[i], W{"out": "x[3]"} connects every out[i]
// to x[3].
//
func (w W) expand(sp *PartSpec) (map[string][]string, error) {
	r := make(map[string][]string, len(w))
	for k, v := range w {
		if k == "" || v == "" {
			return nil, errors.New("invalid pin mapping " + k + ":" + v)
		}
		pins, err := expandRange(k)
		if err != nil {
			return nil, errors.Wrap(err, "expand key "+k)
		}
		wires, err := expandRange(v)
		if err != nil {
			return nil, errors.Wrap(err, "expand value "+v)
		}
		if n := sp.busWidth(k); len(pins) == 1 && n > 0 && !sp.isInput(k) && !sp.isOutput(k) {
			pins = busPins(k, 0, n-1)
			if !strings.ContainsRune(v, '[') {
				wires = busPins(v, 0, n-1)
			}
		}
		switch {
		case len(pins) == len(wires):
			for i, p := range pins {
				r[p] = wires[i : i+1]
			}
		case len(pins) == 1:
			r[pins[0]] = wires
		case len(wires) == 1:
			for _, p := range pins {
				r[p] = wires
			}
		default:
			return nil, errors.New("pin count mismatch in pin mapping: " + k + ":" + v)
		}
	}
	return r, nil
}

// expandRange expands "bus[a..b]" to the names of pins a to b of bus. Any
// other name, including a single bus pin like "bus[3]", is returned as is.
//
func expandRange(name string) ([]string, error) {
	bus, rng, ok := strings.Cut(name, "[")
	if !ok {
		return []string{name}, nil
	}
	if bus == "" {
		return nil, errors.New("empty bus name")
	}
	lo, hi, ok := strings.Cut(rng, "..")
	if !ok {
		return []string{name}, nil
	}
	hi, ok = strings.CutSuffix(hi, "]")
	if !ok {
		return nil, errors.New("no terminating ] in bus range")
	}
	start, err := strconv.Atoi(lo)
	if err != nil {
		return nil, errors.Wrap(err, "bus range start")
	}
	end, err := strconv.Atoi(hi)
	if err != nil {
		return nil, errors.Wrap(err, "bus range end")
	}
	if start < 0 || end < start {
		return nil, errors.Errorf("invalid bus range %d..%d", start, end)
	}
	return busPins(bus, start, end), nil
}

func busPins(bus string, start, end int) []string {
	r := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, BusPinName(bus, i))
	}
	return r
}

// BusPinName returns the pin name for the n-th bit of the given bus.
//
func BusPinName(bus string, bit int) string {
	return bus + "[" + strconv.Itoa(bit) + "]"
}

// ParseIO parses a pin specification string and returns individual pin
// names, expanding bus declarations to individual pin names:
//
//	ParseIO("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
func ParseIO(spec string) ([]string, error) {
	var out []string
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	for _, f := range strings.Split(spec, ",") {
		f = strings.TrimSpace(f)
		i := strings.IndexRune(f, '[')
		if i < 0 {
			if f == "" {
				return nil, errors.Errorf("in %q: empty pin name", spec)
			}
			out = append(out, f)
			continue
		}
		name := f[:i]
		if name == "" || !strings.HasSuffix(f, "]") {
			return nil, errors.Errorf("in %q: invalid bus declaration %q", spec, f)
		}
		size, err := strconv.Atoi(f[i+1 : len(f)-1])
		if err != nil || size <= 0 {
			return nil, errors.Errorf("in %q: invalid bus size in %q", spec, f)
		}
		out = append(out, busPins(name, 0, size-1)...)
	}
	return out, nil
}

// IO is like ParseIO but panics on error. It is meant to be used for static
// pin specifications in PartSpec declarations.
//
func IO(spec string) []string {
	pins, err := ParseIO(spec)
	if err != nil {
		panic(err)
	}
	return pins
}
