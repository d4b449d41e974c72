package service

import (
	"context"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/fleetconfig/channelhub/internal/engine"
)

// ResolveByTag computes the configuration URLs a cluster agent should
// fetch, given its declared tags. This is the polling read path used by
// unauthenticated agents presenting only an org key, so it degrades to an
// empty result on every failure (a bad key, a missing org, an unreachable
// store) rather than leaking whether the organization or the credential
// is valid.
func (s *Service) ResolveByTag(ctx context.Context, orgID, orgKey, tagsCSV string) []string {
	ok, err := s.gate.ValidateOrgKey(ctx, orgID, orgKey)
	if err != nil {
		s.logger.Error("resolve: org key validation failed", "org_id", orgID, "error", err)
		return []string{}
	}
	if !ok {
		s.logger.Error("resolve: invalid or missing org key", "org_id", orgID)
		return []string{}
	}

	callerTags := domain.ParseTags(tagsCSV)

	subs, err := s.store.ListSubscriptions(ctx, orgID)
	if err != nil {
		s.logger.Error("resolve: listing subscriptions failed", "org_id", orgID, "error", err)
		return []string{}
	}

	matched := engine.MatchSubscriptions(subs, callerTags)
	if len(matched) == 0 {
		return []string{}
	}

	urls, err := s.resolver.Resolve(ctx, orgID, matched)
	if err != nil {
		s.logger.Error("resolve: building urls failed", "org_id", orgID, "error", err)
		return []string{}
	}
	return urls
}
