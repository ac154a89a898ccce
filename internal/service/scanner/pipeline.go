package scanner

import "image"

// Result holds everything detected on one frame.
type Result struct {
	Faces      []image.Rectangle
	Detections []Detection
}

// Pipeline runs face detection followed by per-face feature detection.
// It holds no per-frame state, so Detect may be called repeatedly on the same image.
type Pipeline struct {
	face     Classifier
	features []Classifier
}

// NewPipeline builds a pipeline from the registry's face and face-feature classifiers.
func NewPipeline(registry *Registry) *Pipeline {
	features := make([]Classifier, 0, len(FaceFeatures))
	for _, f := range FaceFeatures {
		features = append(features, registry.Get(f))
	}

	return &Pipeline{
		face:     registry.Get(Face),
		features: features,
	}
}

// Detect finds faces on gray and the features inside each face, in frame coordinates.
func (p *Pipeline) Detect(gray Image) Result {
	var result Result

	result.Faces = DetectFeature(gray, p.face)
	for _, face := range result.Faces {
		result.Detections = append(result.Detections, p.detectInFace(gray, face)...)
	}

	return result
}

// detectInFace runs each feature cascade on the face sub-region and adds the hair box.
// Feature boxes are kept as the cascade reported them so Accept sees the raw candidate;
// drawing clips them to the frame.
func (p *Pipeline) detectInFace(gray Image, face image.Rectangle) []Detection {
	var detections []Detection

	roi := gray.Region(face)
	defer roi.Close()

	for _, c := range p.features {
		feature := c.Feature()
		for _, local := range detectRaw(roi, c) {
			box := ToFrame(face, local)
			if feature.Accept != nil && !feature.Accept(face, box) {
				continue
			}
			detections = append(detections, Detection{Label: feature.Label, Box: box, Color: DefaultColor})
		}
	}

	detections = append(detections, Detection{Label: HairLabel, Box: HairRegion(face), Color: DefaultColor})
	return detections
}
