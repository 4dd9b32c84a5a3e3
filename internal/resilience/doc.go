// Package resilience provides reliability patterns for outbound HTTP calls.
//
// Its one subpackage, circuitbreaker, wraps github.com/sony/gobreaker around
// the two outbound destination classes this reader talks to: feed hosts and
// the readability service. This is a transport-level concern, distinct from
// the per-feed consecutive_failures counter the storage engine keeps, which
// gates which feeds the refresh coordinator attempts at all.
package resilience
