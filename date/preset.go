package date

import (
	"fmt"
	"strings"
)

// Preset is a named look-back window ending today.
type Preset string

const (
	OneMonth    Preset = "1M"
	ThreeMonths Preset = "3M"
	SixMonths   Preset = "6M"
	YearToDate  Preset = "YTD"
	OneYear     Preset = "1Y"
	All         Preset = "ALL"
)

// Presets lists the supported presets, shortest first.
var Presets = []Preset{OneMonth, ThreeMonths, SixMonths, YearToDate, OneYear, All}

// ParsePreset parses a preset name, case insensitive. "∞" and "max" are aliases of ALL.
func ParsePreset(s string) (Preset, error) {
	switch p := Preset(strings.ToUpper(strings.TrimSpace(s))); p {
	case OneMonth, ThreeMonths, SixMonths, YearToDate, OneYear, All:
		return p, nil
	case "∞", "MAX", "":
		return All, nil
	default:
		return All, fmt.Errorf("unknown range preset %q, want one of %v", s, Presets)
	}
}

// Start returns the first day covered by the preset, or the zero Date for ALL.
func (p Preset) Start(today Date) Date {
	switch p {
	case OneMonth:
		return today.AddMonth(-1)
	case ThreeMonths:
		return today.AddMonth(-3)
	case SixMonths:
		return today.AddMonth(-6)
	case YearToDate:
		return today.StartOf(Yearly)
	case OneYear:
		return today.AddYear(-1)
	default:
		return Date{}
	}
}

// Range returns the range covered by the preset ending today.
func (p Preset) Range(today Date) Range {
	return Range{From: p.Start(today), To: today}
}

func (p Preset) String() string { return string(p) }

// Set implements flag.Value.
func (p *Preset) Set(s string) error {
	v, err := ParsePreset(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
