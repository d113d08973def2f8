package bubbletea

import "github.com/fwojciec/chatstream"

// SetRunning puts the model in a running state with the given cancel func.
func SetRunning(m Model, cancel func()) Model {
	m.running = true
	m.cancel = cancel
	return m
}

// Signal exposes the signal the model raises on Esc or Ctrl+C.
func Signal(m Model) *chatstream.Signal {
	return m.signal
}
