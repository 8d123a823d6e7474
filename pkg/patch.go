package pkg

import (
	"bytes"
	"encoding/json"
)

// Field is a JSON patch field that tells apart an absent key, an explicit null and a value.
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

func NewField[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

func NullField[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// Set reports whether the key was present in the decoded object.
func (f Field[T]) Set() bool {
	return f.set
}

func (f Field[T]) Null() bool {
	return f.null
}

func (f Field[T]) Value() T {
	return f.value
}

// Ptr returns nil for an explicit null, otherwise a pointer to the value.
func (f Field[T]) Ptr() *T {
	if f.null {
		return nil
	}
	v := f.value
	return &v
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		return nil
	}
	return json.Unmarshal(data, &f.value)
}

func Ptr[T any](v T) *T {
	return &v
}
