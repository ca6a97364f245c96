//go:build rp2040 || rp2350

package main

import "ebbcore/core"

// pinFromName parses a config pin name like "gpio9" into a core.GPIOPin.
func pinFromName(name string) core.GPIOPin {
	return core.GPIOPin(numFromName(name))
}

// numFromName extracts the trailing digits of a "gpioN" pin name.
func numFromName(name string) uint8 {
	n := uint8(0)
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	for _, c := range name[i:] {
		n = n*10 + uint8(c-'0')
	}
	return n
}
