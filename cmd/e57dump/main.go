// Command e57dump opens an E57 file and prints a per-batch summary of one of
// its point sets (selected by -pointset), exercising the e57 package and its e57mmap companion
// end-to-end. Argument parsing, XML schema parsing, and text formatting are
// all collaborator concerns the core e57 package deliberately stays out of;
// this command is where they live.
package main

import (
	"encoding/xml"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/e57io/e57"
	"github.com/e57io/e57/e57mmap"
)

func main() {
	path := flag.String("file", "", "path to an .e57 file")
	batch := flag.Int("batch", 4096, "points decoded per batch")
	pointSet := flag.Int("pointset", 0, "point set index to dump")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *path == "" {
		logger.Error("missing -file")
		os.Exit(2)
	}

	if err := run(*path, *batch, *pointSet, logger); err != nil {
		logger.Error("dump failed", "error", err)
		if e, ok := asE57Error(err); ok {
			logger.Error("classification",
				"corrupted", e57.IsCorrupted(err),
				"io", e57.IsIO(err),
				"unsupported", e57.IsUnsupported(err),
				"code", e.Code)
		}
		os.Exit(1)
	}
}

func run(path string, batchSize, pointSetIndex int, logger *slog.Logger) error {
	r, fileSize, err := e57mmap.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h, err := e57.Open(r, fileSize, e57.OpenOptions{
		SchemaParser: xmlSchemaParser{},
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer h.Close()

	logger.Info("opened file", "pointSets", h.PointSetCount(), "major", h.Header().Major, "minor", h.Header().Minor)

	ps := h.Schema().PointSets[pointSetIndex]
	buffer := make([]float32, batchSize*3)
	writeDescs := xyzWriteDescs(ps)

	total := 0
	err = h.ReadPoints(e57.ReadPointsArgs{
		Buffer:        buffer,
		WriteDesc:     writeDescs,
		PointCapacity: batchSize,
		PointSetIndex: pointSetIndex,
		Consume: func(n int) {
			total += n
			if n > 0 {
				fmt.Printf("batch of %d points, first=(%.3f,%.3f,%.3f) last=(%.3f,%.3f,%.3f)\n",
					n, buffer[0], buffer[1], buffer[2],
					buffer[(n-1)*3], buffer[(n-1)*3+1], buffer[(n-1)*3+2])
			}
		},
	})
	if err != nil {
		return err
	}

	logger.Info("done", "pointsRead", total)
	return nil
}

// xyzWriteDescs builds a tightly-packed x,y,z WriteDesc set for whichever
// components of ps carry the cartesian roles, in declared order.
func xyzWriteDescs(ps e57.PointSet) []e57.WriteDesc {
	var out []e57.WriteDesc
	for stream, c := range ps.Components {
		var offset int
		switch c.Role {
		case e57.CartesianX:
			offset = 0
		case e57.CartesianY:
			offset = 1
		case e57.CartesianZ:
			offset = 2
		default:
			continue
		}
		out = append(out, e57.WriteDesc{Offset: offset, Stride: 3, ValueType: c.Type, Stream: uint32(stream)})
	}
	return out
}

func asE57Error(err error) (*e57.Error, bool) {
	e, ok := err.(*e57.Error)
	return e, ok
}

// xmlSchemaParser is a minimal, best-effort reading of an E57 XML
// descriptor's <points>/CompressedVector elements into an e57.Schema. It
// does not attempt full E57 XML conformance (namespaces, codecs, extension
// elements); it recognizes the flat attribute/tag vocabulary spec.md's
// Schema input interface names.
type xmlSchemaParser struct{}

type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	CharData string     `xml:",chardata"`
}

func (xmlSchemaParser) ParseSchema(data []byte) (*e57.Schema, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, e57.NewErrorf(e57.ErrCodeUnknownAttribute, "xml parse: %v", err)
	}

	schema := &e57.Schema{}
	var walk func(n xmlNode) error
	walk = func(n xmlNode) error {
		if n.XMLName.Local == "points" || n.XMLName.Local == "CompressedVector" {
			ps, ok, err := parsePointsNode(n)
			if err != nil {
				return err
			}
			if ok {
				schema.PointSets = append(schema.PointSets, ps)
			}
		}
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}

	if len(schema.PointSets) == 0 {
		return nil, e57.NewErrorf(e57.ErrCodeUnknownAttribute, "no <points> element found in XML descriptor")
	}
	return schema, nil
}

var componentRoleNames = map[string]e57.ComponentRole{
	"cartesianX":            e57.CartesianX,
	"cartesianY":            e57.CartesianY,
	"cartesianZ":            e57.CartesianZ,
	"sphericalRange":        e57.SphericalRange,
	"sphericalAzimuth":      e57.SphericalAzimuth,
	"sphericalElevation":    e57.SphericalElevation,
	"rowIndex":              e57.RowIndex,
	"columnIndex":           e57.ColumnIndex,
	"returnCount":           e57.ReturnCount,
	"returnIndex":           e57.ReturnIndex,
	"timeStamp":             e57.TimeStamp,
	"intensity":             e57.Intensity,
	"colorRed":              e57.ColorRed,
	"colorGreen":            e57.ColorGreen,
	"colorBlue":             e57.ColorBlue,
	"cartesianInvalidState": e57.CartesianInvalidState,
	"sphericalInvalidState": e57.SphericalInvalidState,
	"isTimeStampInvalid":    e57.IsTimeStampInvalid,
	"isIntensityInvalid":    e57.IsIntensityInvalid,
	"isColorInvalid":        e57.IsColorInvalid,
}

func parsePointsNode(n xmlNode) (e57.PointSet, bool, error) {
	var ps e57.PointSet
	ps.FileOffset = attrUint(n, "fileOffset")
	ps.RecordCount = attrUint(n, "recordCount")

	for _, child := range n.Children {
		role, ok := componentRoleNames[child.XMLName.Local]
		if !ok {
			continue
		}
		c := e57.Component{Role: role}

		switch attrString(child, "type") {
		case "ScaledInteger":
			c.Type = e57.ScaledInteger
		case "Float":
			// The reference implementation this format was distilled from
			// rejects "singe" (a typo for "single") literally; only
			// "single" and "double" are recognized here, and anything else
			// is an UnknownAttribute rather than silently defaulting.
			switch precision := attrString(child, "precision"); precision {
			case "", "single":
				c.Type = e57.Float
			case "double":
				c.Type = e57.Double
			default:
				return ps, false, e57.NewErrorf(e57.ErrCodeUnknownAttribute, "component %s: unrecognized precision %q", role, precision)
			}
		default:
			c.Type = e57.Integer
		}

		switch c.Type {
		case e57.Integer, e57.ScaledInteger:
			c.Min = attrInt(child, "minimum")
			c.Max = attrInt(child, "maximum")
			c.Scale = attrFloatDefault(child, "scale", 1)
			c.Offset = attrFloatDefault(child, "offset", 0)
			c.BitWidth = e57.BitWidthFor(c.Min, c.Max)
		case e57.Float, e57.Double:
			c.FMin = attrFloatDefault(child, "minimum", 0)
			c.FMax = attrFloatDefault(child, "maximum", 0)
		}

		ps.Components = append(ps.Components, c)
	}

	return ps, len(ps.Components) > 0, nil
}

func attrString(n xmlNode, name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrInt(n xmlNode, name string) int64 {
	v, _ := strconv.ParseInt(attrString(n, name), 10, 64)
	return v
}

func attrUint(n xmlNode, name string) uint64 {
	v, _ := strconv.ParseUint(attrString(n, name), 10, 64)
	return v
}

func attrFloatDefault(n xmlNode, name string, def float64) float64 {
	s := attrString(n, name)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
