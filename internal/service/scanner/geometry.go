package scanner

import "image"

// ToFrame translates a rectangle detected inside face into frame coordinates.
func ToFrame(face, local image.Rectangle) image.Rectangle {
	return local.Add(face.Min)
}

// MouthBelowFace keeps a mouth candidate only when its bottom edge lies below the bottom
// edge of the face box: fy + my + mh > fy + fh. Both rectangles are frame-absolute.
func MouthBelowFace(face, candidate image.Rectangle) bool {
	return candidate.Max.Y > face.Min.Y+face.Dy()
}

// HairRegion is the top HairRatio of the face box: same x, y and width.
func HairRegion(face image.Rectangle) image.Rectangle {
	h := int(float64(face.Dy()) * HairRatio)
	return image.Rect(face.Min.X, face.Min.Y, face.Max.X, face.Min.Y+h)
}

// clip bounds r to the given image bounds, keeping width and height non-negative.
func clip(r, bounds image.Rectangle) image.Rectangle {
	return r.Canon().Intersect(bounds)
}
