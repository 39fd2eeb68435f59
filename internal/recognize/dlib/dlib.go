// Package dlib implements recognize.Detector on top of go-face (dlib HOG/CNN detectors,
// 5-point shape predictor and the ResNet descriptor model).
//
// The models directory must contain:
//   - shape_predictor_5_face_landmarks.dat
//   - dlib_face_recognition_resnet_model_v1.dat
//   - mmod_human_face_detector.dat (CNN detector only)
package dlib

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/kozaktomas/facecam/internal/recognize"
)

// Model selects the face detector.
type Model string

const (
	ModelHOG Model = "hog"
	ModelCNN Model = "cnn"
)

// ParseModel maps a config string to a Model.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelHOG, "":
		return ModelHOG, nil
	case ModelCNN:
		return ModelCNN, nil
	default:
		return "", fmt.Errorf("unknown detector model %q (want hog or cnn)", s)
	}
}

// Detector wraps a go-face recognizer. The underlying dlib objects are not safe for
// concurrent use, so every call holds mu.
type Detector struct {
	rec   *face.Recognizer
	model Model
	mu    sync.Mutex
}

// NewDetector loads the dlib models from modelsDir.
func NewDetector(modelsDir string, model Model) (*Detector, error) {
	log.Printf("Loading dlib face models from %s (%s detector)", modelsDir, model)

	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading face models from %s: %w", modelsDir, err)
	}
	return &Detector{rec: rec, model: model}, nil
}

// Detect finds all faces in data and returns them with descriptors.
func (d *Detector) Detect(data []byte) ([]recognize.Face, error) {
	jpegData, err := recognize.Normalize(data)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rec == nil {
		return nil, errors.New("detector is closed")
	}

	var faces []face.Face
	if d.model == ModelCNN {
		faces, err = d.rec.RecognizeCNN(jpegData)
	} else {
		faces, err = d.rec.Recognize(jpegData)
	}
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	result := make([]recognize.Face, len(faces))
	for i, f := range faces {
		result[i] = recognize.Face{
			Rect:       f.Rectangle,
			Descriptor: recognize.Descriptor(f.Descriptor),
		}
	}
	return result, nil
}

// Close releases the native recognizer.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rec != nil {
		d.rec.Close()
		d.rec = nil
	}
}
