/*
Package group manages chat group membership.

This file defines the Service, the business layer over the group store. It
also satisfies the message router's GroupDirectory contract, so fan-out and
membership management share one source of truth.
*/
package group

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"crmchat/internal/pkg/errs"
	"crmchat/internal/pkg/logx"
)

// Service implements group membership operations on top of a Store.
type Service struct {
	store Store

	// scopedListing restricts List to groups the caller belongs to. The
	// default (false) reproduces the observed all-groups-visible behavior.
	scopedListing bool

	logger zerolog.Logger
}

// NewService constructs a Service.
func NewService(store Store, scopedListing bool) *Service {
	return &Service{
		store:         store,
		scopedListing: scopedListing,
		logger:        logx.Logger().With().Str("component", "GroupService").Logger(),
	}
}

// Create makes a new group whose sole initial member is the creator.
func (s *Service) Create(ctx context.Context, name, creatorID string) (Group, error) {
	if strings.TrimSpace(name) == "" {
		return Group{}, errs.NewError(errs.ErrGroupNameRequired)
	}

	g, err := s.store.Insert(ctx, name, []string{creatorID})
	if err != nil {
		return Group{}, errs.NewError(errs.ErrUnknown, err)
	}

	s.logger.Info().Str("group_id", g.ID).Str("creator", creatorID).Msg("Group created.")
	return g, nil
}

// AddMembers unions userIDs into the group's member set. Duplicates, whether
// within the request or against existing members, are no-ops.
func (s *Service) AddMembers(ctx context.Context, groupID string, userIDs []string) (Group, error) {
	if len(userIDs) == 0 {
		return Group{}, errs.NewError(errs.ErrMemberListRequired)
	}

	g, err := s.store.Get(ctx, groupID)
	if err != nil {
		return Group{}, err
	}

	merged := lo.Uniq(append(g.Members, userIDs...))
	if len(merged) == len(g.Members) {
		return g, nil
	}

	updated, err := s.store.UpdateMembers(ctx, groupID, merged)
	if err != nil {
		return Group{}, err
	}

	s.logger.Info().Str("group_id", groupID).Int("members", len(updated.Members)).Msg("Group members updated.")
	return updated, nil
}

// Rename changes the group's display name.
func (s *Service) Rename(ctx context.Context, groupID, newName string) (Group, error) {
	if strings.TrimSpace(newName) == "" {
		return Group{}, errs.NewError(errs.ErrGroupNameRequired)
	}

	return s.store.UpdateName(ctx, groupID, newName)
}

// List returns the groups visible to the caller: every group in the system,
// or only the caller's groups when scoped listing is enabled.
func (s *Service) List(ctx context.Context, callerID string) ([]Group, error) {
	groups, err := s.store.List(ctx)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	if !s.scopedListing {
		return groups, nil
	}

	return lo.Filter(groups, func(g Group, _ int) bool {
		return g.Contains(callerID)
	}), nil
}

// Members resolves a group's member set for message and typing fan-out,
// satisfying the chat package's GroupDirectory interface.
func (s *Service) Members(ctx context.Context, groupID string) ([]string, error) {
	g, err := s.store.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return g.Members, nil
}
