package models

// Field is a confidence-annotated extraction slot. A field is either Known,
// carrying a value and the extractor's confidence in [0,1], or Unknown.
// Unknown means no evidence was found; it is never a low-confidence guess.
type Field[T any] struct {
	Known      bool    `json:"known"`
	Value      T       `json:"value,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

func Known[T any](value T, confidence float64) Field[T] {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Field[T]{Known: true, Value: value, Confidence: confidence}
}

func Unknown[T any]() Field[T] {
	return Field[T]{}
}

// Or returns f when it is known, otherwise the fallback. Used when merging
// adapter results: a higher-fidelity known value is never overwritten by a
// lower-fidelity one.
func (f Field[T]) Or(fallback Field[T]) Field[T] {
	if f.Known {
		return f
	}
	return fallback
}
