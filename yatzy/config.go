package yatzy

import (
	"fmt"

	"yatzy-lite/dice"
)

type Config struct {
	// RNG seed (0 => time-based). Ignored when Source or ScriptedFaces is set.
	Seed int64

	// Source overrides the random source entirely.
	Source dice.Source

	// ScriptedFaces, when non-empty, are handed out in order to every unheld
	// die. Used by replays and tests.
	ScriptedFaces []dice.Face
}

func (c Config) validate() error {
	if c.Source != nil && len(c.ScriptedFaces) > 0 {
		return fmt.Errorf("Source and ScriptedFaces are mutually exclusive")
	}
	for i, f := range c.ScriptedFaces {
		if !f.Valid() {
			return fmt.Errorf("scripted face %d out of range: %d", i, f)
		}
	}
	return nil
}

func (c Config) source() dice.Source {
	switch {
	case c.Source != nil:
		return c.Source
	case len(c.ScriptedFaces) > 0:
		return dice.NewScriptedSource(c.ScriptedFaces...)
	default:
		return dice.NewSeededSource(c.Seed)
	}
}
