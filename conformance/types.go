package conformance

import (
	"github.com/Query-farm/vgi-xmlrpc/wire"
	"github.com/Query-farm/vgi-xmlrpc/xmlrpc"
)

// Status is a string-backed enum.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusClosed  Status = "CLOSED"
)

// StatusParam accepts a string naming one of the Status values.
var StatusParam = xmlrpc.Param[Status]{
	Type: wire.TypeString,
	Decode: func(v wire.Value) (Status, bool) {
		s, ok := v.AsString()
		if !ok {
			return "", false
		}
		switch st := Status(s); st {
		case StatusPending, StatusActive, StatusClosed:
			return st, true
		}
		return "", false
	},
}

func (s Status) XMLRPCValue() (wire.Value, error) {
	return wire.String(string(s)), nil
}

// Point is a simple 2D point, carried as struct {x, y}.
type Point struct {
	X float64
	Y float64
}

// PointParam accepts a struct with double members x and y.
var PointParam = xmlrpc.Param[Point]{Type: wire.TypeDictionary, Decode: decodePoint}

func decodePoint(v wire.Value) (Point, bool) {
	m, ok := v.AsDictionary()
	if !ok || len(m) != 2 {
		return Point{}, false
	}
	x, okX := m["x"].AsDouble()
	y, okY := m["y"].AsDouble()
	return Point{X: x, Y: y}, okX && okY
}

func (p Point) XMLRPCValue() (wire.Value, error) {
	return wire.Dictionary(map[string]wire.Value{
		"x": wire.Double(p.X),
		"y": wire.Double(p.Y),
	}), nil
}

// BoundingBox contains two nested Points and a label.
type BoundingBox struct {
	TopLeft     Point
	BottomRight Point
	Label       string
}

// BoundingBoxParam accepts a struct {top_left, bottom_right, label}.
var BoundingBoxParam = xmlrpc.Param[BoundingBox]{
	Type: wire.TypeDictionary,
	Decode: func(v wire.Value) (BoundingBox, bool) {
		m, ok := v.AsDictionary()
		if !ok || len(m) != 3 {
			return BoundingBox{}, false
		}
		tl, ok1 := decodePoint(m["top_left"])
		br, ok2 := decodePoint(m["bottom_right"])
		label, ok3 := m["label"].AsString()
		return BoundingBox{TopLeft: tl, BottomRight: br, Label: label}, ok1 && ok2 && ok3
	},
}

func (b BoundingBox) XMLRPCValue() (wire.Value, error) {
	tl, _ := b.TopLeft.XMLRPCValue()
	br, _ := b.BottomRight.XMLRPCValue()
	return wire.Dictionary(map[string]wire.Value{
		"top_left":     tl,
		"bottom_right": br,
		"label":        wire.String(b.Label),
	}), nil
}

// Entities is the result of validator1.countTheEntities.
type Entities struct {
	LeftAngleBrackets  int
	RightAngleBrackets int
	Ampersands         int
	Apostrophes        int
	Quotes             int
}

func (e Entities) XMLRPCValue() (wire.Value, error) {
	return wire.Dictionary(map[string]wire.Value{
		"ctLeftAngleBrackets":  wire.Int(int64(e.LeftAngleBrackets)),
		"ctRightAngleBrackets": wire.Int(int64(e.RightAngleBrackets)),
		"ctAmpersands":         wire.Int(int64(e.Ampersands)),
		"ctApostrophes":        wire.Int(int64(e.Apostrophes)),
		"ctQuotes":             wire.Int(int64(e.Quotes)),
	}), nil
}
