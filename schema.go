package e57

// ComponentRole identifies which dimension of a point record a Component
// decodes. The values and names mirror the XML tag names the (external)
// descriptor parser recognizes.
type ComponentRole int

const (
	CartesianX ComponentRole = iota
	CartesianY
	CartesianZ
	SphericalRange
	SphericalAzimuth
	SphericalElevation
	RowIndex
	ColumnIndex
	ReturnCount
	ReturnIndex
	TimeStamp
	Intensity
	ColorRed
	ColorGreen
	ColorBlue
	CartesianInvalidState
	SphericalInvalidState
	IsTimeStampInvalid
	IsIntensityInvalid
	IsColorInvalid
)

func (r ComponentRole) String() string {
	switch r {
	case CartesianX:
		return "cartesianX"
	case CartesianY:
		return "cartesianY"
	case CartesianZ:
		return "cartesianZ"
	case SphericalRange:
		return "sphericalRange"
	case SphericalAzimuth:
		return "sphericalAzimuth"
	case SphericalElevation:
		return "sphericalElevation"
	case RowIndex:
		return "rowIndex"
	case ColumnIndex:
		return "columnIndex"
	case ReturnCount:
		return "returnCount"
	case ReturnIndex:
		return "returnIndex"
	case TimeStamp:
		return "timeStamp"
	case Intensity:
		return "intensity"
	case ColorRed:
		return "colorRed"
	case ColorGreen:
		return "colorGreen"
	case ColorBlue:
		return "colorBlue"
	case CartesianInvalidState:
		return "cartesianInvalidState"
	case SphericalInvalidState:
		return "sphericalInvalidState"
	case IsTimeStampInvalid:
		return "isTimeStampInvalid"
	case IsIntensityInvalid:
		return "isIntensityInvalid"
	case IsColorInvalid:
		return "isColorInvalid"
	default:
		return "unknown"
	}
}

// ComponentType is the on-disk numeric encoding of a Component's values.
type ComponentType int

const (
	Integer ComponentType = iota
	ScaledInteger
	Float
	Double
)

func (t ComponentType) String() string {
	switch t {
	case Integer:
		return "integer"
	case ScaledInteger:
		return "scaledInteger"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return "unknown"
	}
}

// Component describes one dimension of a point record: its role, its
// on-disk numeric type, and the payload needed to interpret raw bits.
//
// Min/Max/Scale/Offset/BitWidth apply to Integer and ScaledInteger.
// FMin/FMax apply to Float and Double (informational range bounds; the
// decoder does not clamp against them).
type Component struct {
	Role ComponentRole
	Type ComponentType

	Min, Max      int64
	Scale, Offset float64
	BitWidth      uint8

	FMin, FMax float64
}

// validate checks the invariants spec.md §3 places on a Component's payload.
func (c Component) validate() error {
	switch c.Type {
	case Integer, ScaledInteger:
		if c.Min > c.Max {
			return NewErrorf(ErrCodeBadBitRange, "component %s: min %d > max %d", c.Role, c.Min, c.Max)
		}
		if c.BitWidth > 63 {
			return NewErrorf(ErrCodeBadBitRange, "component %s: bit width %d out of [0,63]", c.Role, c.BitWidth)
		}
	case Float, Double:
		if c.FMin > c.FMax {
			return NewErrorf(ErrCodeBadBitRange, "component %s: fmin %v > fmax %v", c.Role, c.FMin, c.FMax)
		}
	default:
		return NewErrorf(ErrCodeBadComponentType, "component %s: unsupported type %d", c.Role, c.Type)
	}
	return nil
}

// PointSet is one <points> element from the XML schema: the physical
// location of its compressed-vector section, how many records it holds,
// and the components making up each record.
type PointSet struct {
	FileOffset  uint64
	RecordCount uint64
	Components  []Component
}

// Schema is the flat, read-only output of the (external) XML descriptor
// parser — everything the decoder needs and nothing of the parser's own
// intermediate tree structure.
type Schema struct {
	PointSets []PointSet
}

// BitWidthFor computes ceil(log2(max-min+1)) per spec.md §3's derivation
// rule. Exposed so a schema producer (or a test) can derive BitWidth
// consistently with what the decoder assumes.
func BitWidthFor(min, max int64) uint8 {
	if max < min {
		return 0
	}
	span := uint64(max-min) + 1
	var w uint8
	for (uint64(1) << w) < span {
		w++
	}
	return w
}
