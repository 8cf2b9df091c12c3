package classify

import (
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

// GoogleClassifier recognizes errors from the Google API client stack:
// googleapi.Error from the transport, and genai.BlockedError from the
// Gemini SDK when generation stops on a safety block.
type GoogleClassifier struct{}

// Classify implements Classifier.
func (GoogleClassifier) Classify(err error) (*Descriptor, bool) {
	// A safety block is a property of the prompt, retrying cannot help.
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &Descriptor{Kind: KindFatal, RawMessage: blocked.Error(), cause: err}, true
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return nil, false
	}

	// Body carries the full RPC error envelope with any RetryInfo detail;
	// fall back to the bare message when the body was not captured.
	payload := gerr.Body
	if payload == "" {
		payload = gerr.Message
	}
	retryAfter := ""
	if gerr.Header != nil {
		retryAfter = gerr.Header.Get("Retry-After")
	}
	return fromStatus(gerr.Code, payload, retryAfter, err), true
}
