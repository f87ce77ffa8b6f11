package services

import (
	"context"
	"testing"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
)

type stubLineObservations struct {
	follows []models.LineFollow
	visits  []models.LinePortalVisit
}

func (s *stubLineObservations) ListFollows(_ context.Context) ([]models.LineFollow, error) {
	return s.follows, nil
}

func (s *stubLineObservations) ListPortalVisits(_ context.Context) ([]models.LinePortalVisit, error) {
	return s.visits, nil
}

type stubLinkedIDs struct {
	ids []string
}

func (s *stubLinkedIDs) ListLinkedLineUserIDs(_ context.Context) ([]string, error) {
	return s.ids, nil
}

func TestListUnlinkedExcludesLinkedIdentities(t *testing.T) {
	picture := "https://example.com/p.jpg"
	service := NewPendingIdentityService(
		&stubLineObservations{
			follows: []models.LineFollow{
				{LineUserID: "U-linked", DisplayName: "Linked", PictureURL: &picture},
				{LineUserID: "U-friend", DisplayName: "Friend"},
			},
			visits: []models.LinePortalVisit{
				{LineUserID: "U-linked", DisplayName: "Linked"},
			},
		},
		&stubLinkedIDs{ids: []string{"U-linked"}},
	)

	pending, err := service.ListUnlinked(context.Background())
	if err != nil {
		t.Fatalf("ListUnlinked: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending identity, got %d: %+v", len(pending), pending)
	}
	if pending[0].LineUserID != "U-friend" {
		t.Errorf("expected U-friend, got %q", pending[0].LineUserID)
	}
}

func TestListUnlinkedDedupesAndPrefersVisitName(t *testing.T) {
	service := NewPendingIdentityService(
		&stubLineObservations{
			follows: []models.LineFollow{
				{LineUserID: "U-both", DisplayName: "Follow Name"},
			},
			visits: []models.LinePortalVisit{
				{LineUserID: "U-both", DisplayName: "Visit Name"},
			},
		},
		&stubLinkedIDs{},
	)

	pending, err := service.ListUnlinked(context.Background())
	if err != nil {
		t.Fatalf("ListUnlinked: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending identity, got %d", len(pending))
	}
	if pending[0].DisplayName != "Visit Name" {
		t.Errorf("expected visit display name to win, got %q", pending[0].DisplayName)
	}
	if pending[0].Source != models.PendingSourceFriend {
		t.Errorf("expected source friend for a followed identity, got %q", pending[0].Source)
	}
}

func TestListUnlinkedTagsSources(t *testing.T) {
	service := NewPendingIdentityService(
		&stubLineObservations{
			follows: []models.LineFollow{
				{LineUserID: "U-friend", DisplayName: "Friend Only"},
			},
			visits: []models.LinePortalVisit{
				{LineUserID: "U-visitor", DisplayName: "Visitor Only"},
			},
		},
		&stubLinkedIDs{},
	)

	pending, err := service.ListUnlinked(context.Background())
	if err != nil {
		t.Fatalf("ListUnlinked: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending identities, got %d", len(pending))
	}

	sources := map[string]string{}
	for _, p := range pending {
		sources[p.LineUserID] = p.Source
	}
	if sources["U-friend"] != models.PendingSourceFriend {
		t.Errorf("expected U-friend tagged friend, got %q", sources["U-friend"])
	}
	if sources["U-visitor"] != models.PendingSourceVisitor {
		t.Errorf("expected U-visitor tagged visitor, got %q", sources["U-visitor"])
	}
}

func TestListUnlinkedAfterUnfollow(t *testing.T) {
	// An unfollowed identity has no follow row anymore; if it never visited
	// the portal it disappears from the pending view entirely.
	service := NewPendingIdentityService(
		&stubLineObservations{follows: nil, visits: nil},
		&stubLinkedIDs{},
	)

	pending, err := service.ListUnlinked(context.Background())
	if err != nil {
		t.Fatalf("ListUnlinked: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending identities, got %+v", pending)
	}
}
