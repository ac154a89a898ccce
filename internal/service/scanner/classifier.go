package scanner

import (
	"errors"
	"fmt"
	"image"

	"facescanner/internal/logger"
)

// ErrNoCascade is returned by a ModelProvider when no usable model exists for a name.
var ErrNoCascade = errors.New("cascade not found")

// Image is a grayscale image or a view into one.
type Image interface {
	// Bounds is always anchored at (0,0).
	Bounds() image.Rectangle
	// Region returns a view of r. The view shares pixels with the parent and must be closed.
	Region(r image.Rectangle) Image
	Close() error
}

// Cascade is a loaded multi-scale detector.
type Cascade interface {
	DetectMultiScale(img Image, params Params) []image.Rectangle
	Close() error
}

// ModelProvider turns a model resource name into a Cascade.
type ModelProvider interface {
	LoadModel(name string) (Cascade, error)
}

// Classifier is either Loaded or Failed.
type Classifier interface {
	Feature() Feature
	classifier()
}

// Loaded is a classifier with a usable cascade.
type Loaded struct {
	feature Feature
	Cascade Cascade
}

func (l Loaded) Feature() Feature { return l.feature }
func (Loaded) classifier()        {}

// Failed is a classifier whose model could not be loaded. It is never run.
type Failed struct {
	feature Feature
	Err     error
}

func (f Failed) Feature() Feature { return f.feature }
func (Failed) classifier()        {}

// ClassifierStatus reports the load outcome of one feature.
type ClassifierStatus struct {
	Label    string
	Resource string
	Loaded   bool
	Err      error
}

// Registry loads every classifier once and keeps them for the lifetime of the process.
type Registry struct {
	provider    ModelProvider
	logger      *logger.Logger
	classifiers map[string]Classifier
	order       []string
}

// NewRegistry creates an empty registry backed by provider.
func NewRegistry(provider ModelProvider, logger *logger.Logger) *Registry {
	return &Registry{
		provider:    provider,
		logger:      logger,
		classifiers: make(map[string]Classifier),
	}
}

// Load loads the model for feature. A failure is logged once and recorded as Failed.
func (r *Registry) Load(feature Feature) Classifier {
	if c, ok := r.classifiers[feature.Label]; ok {
		return c
	}

	var c Classifier
	cascade, err := r.provider.LoadModel(feature.Resource)
	if err != nil {
		r.logger.Warning("Cascade file %s not found or failed to load: %v", feature.Resource, err)
		c = Failed{feature: feature, Err: err}
	} else {
		r.logger.Info("Loaded %s cascade from %s", feature.Label, feature.Resource)
		c = Loaded{feature: feature, Cascade: cascade}
	}

	r.classifiers[feature.Label] = c
	r.order = append(r.order, feature.Label)
	return c
}

// LoadAll loads each feature in turn.
func (r *Registry) LoadAll(features ...Feature) {
	for _, f := range features {
		r.Load(f)
	}
}

// Get returns the classifier loaded for feature. Features never loaded report as Failed.
func (r *Registry) Get(feature Feature) Classifier {
	if c, ok := r.classifiers[feature.Label]; ok {
		return c
	}
	return Failed{feature: feature, Err: fmt.Errorf("%s: %w", feature.Resource, ErrNoCascade)}
}

// Statuses lists the load outcome of every classifier in load order.
func (r *Registry) Statuses() []ClassifierStatus {
	statuses := make([]ClassifierStatus, 0, len(r.order))
	for _, label := range r.order {
		switch c := r.classifiers[label].(type) {
		case Loaded:
			statuses = append(statuses, ClassifierStatus{Label: label, Resource: c.feature.Resource, Loaded: true})
		case Failed:
			statuses = append(statuses, ClassifierStatus{Label: label, Resource: c.feature.Resource, Err: c.Err})
		}
	}
	return statuses
}

// Close releases every loaded cascade.
func (r *Registry) Close() error {
	var errs []error
	for _, label := range r.order {
		if c, ok := r.classifiers[label].(Loaded); ok {
			if err := c.Cascade.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s cascade: %w", label, err))
			}
		}
	}
	return errors.Join(errs...)
}

// DetectFeature runs classifier over img. Failed classifiers produce no rectangles and
// the cascade is not invoked. Results are clipped to the image bounds.
func DetectFeature(img Image, c Classifier) []image.Rectangle {
	rects := detectRaw(img, c)
	bounds := img.Bounds()
	for i := range rects {
		rects[i] = clip(rects[i], bounds)
	}
	return rects
}

// detectRaw runs a loaded classifier and returns its rectangles normalised but not clipped.
func detectRaw(img Image, c Classifier) []image.Rectangle {
	loaded, ok := c.(Loaded)
	if !ok {
		return nil
	}

	rects := loaded.Cascade.DetectMultiScale(img, loaded.feature.Params)
	for i := range rects {
		rects[i] = rects[i].Canon()
	}
	return rects
}
