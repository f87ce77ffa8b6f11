package services

import (
	"context"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
)

type lineObservationReader interface {
	ListFollows(ctx context.Context) ([]models.LineFollow, error)
	ListPortalVisits(ctx context.Context) ([]models.LinePortalVisit, error)
}

type linkedIdentityReader interface {
	ListLinkedLineUserIDs(ctx context.Context) ([]string, error)
}

// PendingIdentityService derives the list of observed LINE identities not
// yet linked to any student, for manual pairing by staff. The view is
// recomputed on every call; nothing here is cached or authoritative.
type PendingIdentityService struct {
	lineEvents lineObservationReader
	users      linkedIdentityReader
}

func NewPendingIdentityService(lineEvents lineObservationReader, users linkedIdentityReader) *PendingIdentityService {
	return &PendingIdentityService{lineEvents: lineEvents, users: users}
}

// ListUnlinked dedupes by external id, preferring the portal-visit display
// name over the follow-event one, and tags identities with a follow event
// as "friend", portal-only ones as "visitor".
func (s *PendingIdentityService) ListUnlinked(ctx context.Context) ([]models.PendingLineIdentity, error) {
	linkedIDs, err := s.users.ListLinkedLineUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	linked := make(map[string]struct{}, len(linkedIDs))
	for _, id := range linkedIDs {
		linked[id] = struct{}{}
	}

	follows, err := s.lineEvents.ListFollows(ctx)
	if err != nil {
		return nil, err
	}
	visits, err := s.lineEvents.ListPortalVisits(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.PendingLineIdentity)
	order := make([]string, 0, len(follows)+len(visits))

	for _, follow := range follows {
		if _, ok := linked[follow.LineUserID]; ok {
			continue
		}
		byID[follow.LineUserID] = &models.PendingLineIdentity{
			LineUserID:  follow.LineUserID,
			DisplayName: follow.DisplayName,
			PictureURL:  follow.PictureURL,
			Source:      models.PendingSourceFriend,
		}
		order = append(order, follow.LineUserID)
	}

	for _, visit := range visits {
		if _, ok := linked[visit.LineUserID]; ok {
			continue
		}
		if existing, ok := byID[visit.LineUserID]; ok {
			if visit.DisplayName != "" {
				existing.DisplayName = visit.DisplayName
			}
			continue
		}
		byID[visit.LineUserID] = &models.PendingLineIdentity{
			LineUserID:  visit.LineUserID,
			DisplayName: visit.DisplayName,
			Source:      models.PendingSourceVisitor,
		}
		order = append(order, visit.LineUserID)
	}

	pending := make([]models.PendingLineIdentity, 0, len(order))
	for _, id := range order {
		pending = append(pending, *byID[id])
	}
	return pending, nil
}
