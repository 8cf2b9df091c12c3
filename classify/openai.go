package classify

import (
	"errors"

	"github.com/openai/openai-go"
)

// OpenAIClassifier recognizes errors returned by the official OpenAI SDK.
type OpenAIClassifier struct{}

// Classify implements Classifier.
func (OpenAIClassifier) Classify(err error) (*Descriptor, bool) {
	var apierr *openai.Error
	if !errors.As(err, &apierr) {
		return nil, false
	}

	retryAfter := ""
	if apierr.Response != nil {
		retryAfter = apierr.Response.Header.Get("Retry-After")
	}
	return fromStatus(apierr.StatusCode, apierr.Error(), retryAfter, err), true
}
