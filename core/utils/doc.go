// Package utils provides loose type conversion for decoded protocol payloads.
//
// Game responses are decoded into map[string]any, where numbers arrive as
// float64, ids are sometimes strings and absent fields are nil. The helpers
// here normalise those values without failing.
package utils
