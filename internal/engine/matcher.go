// Package engine holds the pure resolution pieces: tag subset matching,
// configuration URL resolution, and the per-organization polling rate
// limiter.
package engine

import (
	"github.com/fleetconfig/channelhub/internal/domain"
)

// MatchSubscriptions returns the subscriptions whose stored tag set is a
// subset of callerTags. A subscription with no tags matches every caller.
// Comparison is case-sensitive exact string matching; result order is
// unspecified.
//
// Examples with stored tags {dev, prod}:
//
//	caller {dev}              -> no match
//	caller {dev, prod}        -> match
//	caller {dev, prod, stage} -> match
//	caller {stage}            -> no match
func MatchSubscriptions(subs []domain.Subscription, callerTags []string) []domain.Subscription {
	caller := make(map[string]struct{}, len(callerTags))
	for _, t := range callerTags {
		caller[t] = struct{}{}
	}

	var matched []domain.Subscription
	for _, sub := range subs {
		if isSubset(sub.Tags, caller) {
			matched = append(matched, sub)
		}
	}
	return matched
}

func isSubset(tags []string, caller map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := caller[t]; !ok {
			return false
		}
	}
	return true
}
