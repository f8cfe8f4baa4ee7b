// Package processors provides ready-made sentryware processors: composition,
// tags and user attribution, fail-closed scrubbing, grouping fingerprints,
// runtime state and event logging.
package processors
