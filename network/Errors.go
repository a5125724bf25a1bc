package network

import "errors"

var (
	// ErrShapeMismatch indicates that observation or action dimensions
	// disagree with the network's configured input or output size. The
	// condition is fatal: a run with mismatched shapes has no valid
	// training signal.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNumericInstability indicates that a network output, loss, or
	// gradient became non-finite, typically from pathological logits.
	// The condition is surfaced rather than silently continuing training
	// with corrupted parameters.
	ErrNumericInstability = errors.New("numeric instability")
)
