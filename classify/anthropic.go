package classify

import (
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicClassifier recognizes errors returned by the official Anthropic
// SDK. The API signals overload with 529, which sits in the 5xx range and
// classifies as a transient server failure.
type AnthropicClassifier struct{}

// Classify implements Classifier.
func (AnthropicClassifier) Classify(err error) (*Descriptor, bool) {
	var apierr *anthropic.Error
	if !errors.As(err, &apierr) {
		return nil, false
	}

	retryAfter := ""
	if apierr.Response != nil {
		retryAfter = apierr.Response.Header.Get("Retry-After")
	}
	return fromStatus(apierr.StatusCode, apierr.Error(), retryAfter, err), true
}
