// Package classify maps remote API failures to structured descriptors that
// drive retry policy.
//
// Each upstream API shape gets its own adapter implementing Classifier;
// adapters are composed into a Chain that tries them in order:
//
//	chain := classify.DefaultChain()
//	d := chain.Classify(err)
//	if d.Retryable() {
//	    // back off and retry
//	}
//
// Classification never fails. A payload no adapter recognizes degrades to
// KindUnknown, which is treated as retryable with the raw message preserved
// for diagnostics. Callers without a typed SDK error can classify a raw
// status code and payload directly with Status.
package classify
