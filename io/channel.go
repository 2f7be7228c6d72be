// Package io provides the output channels printed runes are sent through,
// and the ROM images used to preload machine memory.
package io

// Channel defines the interface for machine output channels.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Send writes a single rune to the channel.
	Send(value rune) error
}
