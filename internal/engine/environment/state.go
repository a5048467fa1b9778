package environment

import (
	"errors"
	"fmt"
)

// Stage is a step of environment precomputation.
type Stage int

const (
	SourceAcquired Stage = iota
	EquirectangularUploaded
	CubemapProjected
	MipmapGenerated
	IrradianceConvolved
	PrefilterConvolved
	BRDFIntegrated
	Ready
)

var stageNames = [...]string{
	SourceAcquired:          "SourceAcquired",
	EquirectangularUploaded: "EquirectangularUploaded",
	CubemapProjected:        "CubemapProjected",
	MipmapGenerated:         "MipmapGenerated",
	IrradianceConvolved:     "IrradianceConvolved",
	PrefilterConvolved:      "PrefilterConvolved",
	BRDFIntegrated:          "BRDFIntegrated",
	Ready:                   "Ready",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// State machine errors.
var (
	ErrBackwardTransition = errors.New("environment stage cannot move backwards")
	ErrSkippedStage       = errors.New("environment stage skipped")
)

// Machine tracks the precomputation stage. Stages only move forward, one
// at a time. PrefilterConvolved may be entered once per mip level, and a
// procedural source goes straight from SourceAcquired to CubemapProjected.
type Machine struct {
	stage      Stage
	procedural bool
	mips       int
}

// NewMachine starts a machine at SourceAcquired.
func NewMachine(procedural bool) *Machine {
	return &Machine{stage: SourceAcquired, procedural: procedural}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	return m.stage
}

// PrefilterPasses returns how many times PrefilterConvolved was entered.
func (m *Machine) PrefilterPasses() int {
	return m.mips
}

// Advance moves to the given stage.
func (m *Machine) Advance(to Stage) error {
	switch {
	case to == PrefilterConvolved && m.stage == PrefilterConvolved:
		m.mips++
		return nil
	case to <= m.stage:
		return fmt.Errorf("%w: %s -> %s", ErrBackwardTransition, m.stage, to)
	case to == m.stage+1:
	case m.procedural && m.stage == SourceAcquired && to == CubemapProjected:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrSkippedStage, m.stage, to)
	}
	m.stage = to
	if to == PrefilterConvolved {
		m.mips = 1
	}
	return nil
}
