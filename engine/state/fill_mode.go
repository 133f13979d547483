package state

// FillMode selects how primitives are rasterized. It only affects pipeline construction.
type FillMode int

const (
	// FillModeFill rasterizes filled primitives.
	FillModeFill FillMode = iota
	// FillModeLine rasterizes primitive edges.
	FillModeLine
	// FillModePoint rasterizes primitive vertices.
	FillModePoint
)

func (m FillMode) String() string {
	switch m {
	case FillModeFill:
		return "fill"
	case FillModeLine:
		return "line"
	case FillModePoint:
		return "point"
	default:
		return "unknown"
	}
}

// Up steps the fill mode towards Fill: Fill→Fill, Line→Fill, Point→Line.
func (m FillMode) Up() FillMode {
	switch m {
	case FillModePoint:
		return FillModeLine
	default:
		return FillModeFill
	}
}

// Down steps the fill mode towards Point: Fill→Line, Line→Point, Point→Point.
func (m FillMode) Down() FillMode {
	switch m {
	case FillModeFill:
		return FillModeLine
	default:
		return FillModePoint
	}
}
