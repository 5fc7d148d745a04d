package observability

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/ordmap/pkg/rbtree"
)

// Error type attribute values.
const (
	ErrTypeInvalidKey      = "invalid_key"
	ErrTypeIncomparableKey = "incomparable_key"
	ErrTypeInvariant       = "invariant"
	ErrTypeInput           = "input"
)

const attrErrorType = "error.type"

// ClassifyError maps an error returned by a map operation to an error type
// attribute value. Errors outside the tree's sentinels count as input errors.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, rbtree.ErrInvalidKey):
		return ErrTypeInvalidKey
	case errors.Is(err, rbtree.ErrIncomparableKey):
		return ErrTypeIncomparableKey
	case errors.Is(err, rbtree.ErrInvariant):
		return ErrTypeInvariant
	default:
		return ErrTypeInput
	}
}

// RecordSpanError marks span as failed with err and its error type.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(attrErrorType, ClassifyError(err)))
}
