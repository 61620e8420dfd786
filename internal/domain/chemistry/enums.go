package chemistry

import (
	"strconv"
	"strings"
)

// BondOrder is the multiplicity of a bond.
type BondOrder int

const (
	OrderOther BondOrder = iota
	OrderZero
	OrderPartial01
	OrderSingle
	OrderPartial12
	OrderAromatic
	OrderDouble
	OrderPartial23
	OrderTriple
)

var orderCodes = map[BondOrder]string{
	OrderOther:     "other",
	OrderZero:      "0",
	OrderPartial01: "0.5",
	OrderSingle:    "S",
	OrderPartial12: "1.5",
	OrderAromatic:  "A",
	OrderDouble:    "D",
	OrderPartial23: "2.5",
	OrderTriple:    "T",
}

// ParseBondOrder maps the textual order codes used by CML ("1", "S", "1.5",
// "A" ...) to a BondOrder. ok is false when the text is not recognised; the
// returned order is then OrderOther.
func ParseBondOrder(s string) (BondOrder, bool) {
	switch strings.TrimSpace(s) {
	case "0":
		return OrderZero, true
	case "0.5":
		return OrderPartial01, true
	case "1", "S":
		return OrderSingle, true
	case "1.5":
		return OrderPartial12, true
	case "A":
		return OrderAromatic, true
	case "2", "D":
		return OrderDouble, true
	case "2.5":
		return OrderPartial23, true
	case "3", "T":
		return OrderTriple, true
	case "other":
		return OrderOther, true
	}
	return OrderOther, false
}

// String returns the canonical code written by the converters.
func (o BondOrder) String() string {
	if c, ok := orderCodes[o]; ok {
		return c
	}
	return "other"
}

// Value returns the numeric bond order.
func (o BondOrder) Value() float64 {
	switch o {
	case OrderPartial01:
		return 0.5
	case OrderSingle:
		return 1
	case OrderPartial12, OrderAromatic:
		return 1.5
	case OrderDouble:
		return 2
	case OrderPartial23:
		return 2.5
	case OrderTriple:
		return 3
	default:
		return 0
	}
}

// BondStereo is the stereo descriptor of a bond.
type BondStereo int

const (
	StereoNone BondStereo = iota
	StereoWedge
	StereoHatch
	StereoIndeterminate
	StereoCis
	StereoTrans
)

// ParseBondStereo maps N/W/H/S/C/T. Anything else is StereoNone with ok
// false.
func ParseBondStereo(s string) (BondStereo, bool) {
	switch strings.TrimSpace(s) {
	case "N", "":
		return StereoNone, true
	case "W":
		return StereoWedge, true
	case "H":
		return StereoHatch, true
	case "S":
		return StereoIndeterminate, true
	case "C":
		return StereoCis, true
	case "T":
		return StereoTrans, true
	}
	return StereoNone, false
}

func (s BondStereo) String() string {
	switch s {
	case StereoWedge:
		return "W"
	case StereoHatch:
		return "H"
	case StereoIndeterminate:
		return "S"
	case StereoCis:
		return "C"
	case StereoTrans:
		return "T"
	default:
		return "N"
	}
}

// BondDirection is the side of a double bond on which the second line is
// drawn, relative to the start→end direction.
type BondDirection int

const (
	DirectionAnticlockwise BondDirection = -1
	DirectionNone          BondDirection = 0
	DirectionClockwise     BondDirection = 1
)

// ParseBondDirection accepts the names Clockwise / Anticlockwise / None (any
// case) or the numbers 1 / -1 / 0.
func ParseBondDirection(s string) (BondDirection, bool) {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "clockwise":
		return DirectionClockwise, true
	case "anticlockwise", "counterclockwise":
		return DirectionAnticlockwise, true
	case "none":
		return DirectionNone, true
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return DirectionNone, false
	}
	switch {
	case n > 0:
		return DirectionClockwise, true
	case n < 0:
		return DirectionAnticlockwise, true
	default:
		return DirectionNone, true
	}
}

func (d BondDirection) String() string {
	switch d {
	case DirectionClockwise:
		return "Clockwise"
	case DirectionAnticlockwise:
		return "Anticlockwise"
	default:
		return "None"
	}
}

//Personal.AI order the ending
