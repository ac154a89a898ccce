// Package scanner implements the per-frame face feature detection pipeline.
//
// The package is independent of any imaging backend: frames, grayscale images and
// cascades are reached through small interfaces implemented by the vision package.
package scanner

import (
	"image"
	"image/color"
)

// ScaleFactor is the multi-scale step used by every cascade.
const ScaleFactor = 1.3

// HairRatio is the share of the face height taken as the hair region.
const HairRatio = 0.3

// DefaultColor is the annotation colour (green).
var DefaultColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// Params are the multi-scale detection parameters handed to a cascade.
type Params struct {
	ScaleFactor  float64
	MinNeighbors int
}

// Feature describes one detectable facial feature and the model it is loaded from.
type Feature struct {
	Label    string
	Resource string
	Params   Params
	// Accept, when set, decides whether a frame-absolute candidate survives for the given face.
	Accept func(face, candidate image.Rectangle) bool
}

var (
	Face = Feature{
		Label:    "Face",
		Resource: "haarcascade_frontalface_default.xml",
		Params:   Params{ScaleFactor: ScaleFactor, MinNeighbors: 5},
	}
	Eye = Feature{
		Label:    "Eye",
		Resource: "haarcascade_eye.xml",
		Params:   Params{ScaleFactor: ScaleFactor, MinNeighbors: 5},
	}
	Mouth = Feature{
		Label:    "Mouth",
		Resource: "haarcascade_mcs_mouth.xml",
		Params:   Params{ScaleFactor: ScaleFactor, MinNeighbors: 20},
		Accept:   MouthBelowFace,
	}
	Ear = Feature{
		Label:    "Ear",
		Resource: "haarcascade_mcs_leftear.xml",
		Params:   Params{ScaleFactor: ScaleFactor, MinNeighbors: 5},
	}
	// Eyebrow is loaded from the right-ear model. This matches the deployed behaviour and is
	// most likely a labeling mistake; keep it until a dedicated eyebrow cascade is chosen.
	Eyebrow = Feature{
		Label:    "Eyebrow",
		Resource: "haarcascade_mcs_rightear.xml",
		Params:   Params{ScaleFactor: ScaleFactor, MinNeighbors: 5},
	}
)

// HairLabel labels the hair region derived from each face box.
const HairLabel = "Hair"

// FaceFeatures are detected inside every face region, in annotation order.
var FaceFeatures = []Feature{Eye, Mouth, Ear, Eyebrow}

// AllFeatures is the full set of cascades loaded at startup.
var AllFeatures = append([]Feature{Face}, FaceFeatures...)

// Detection is a labeled box to be drawn on the current frame.
type Detection struct {
	Label string
	Box   image.Rectangle
	Color color.RGBA
}
