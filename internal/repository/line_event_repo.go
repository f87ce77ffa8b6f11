package repository

import (
	"context"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
)

// LineEventRepository stores the raw observation logs the pending-identity
// view is derived from: follow events from the LINE webhook and portal
// visits. Neither log is authoritative for links.
type LineEventRepository struct {
	db DBTX
}

func NewLineEventRepository(db DBTX) *LineEventRepository {
	return &LineEventRepository{db: db}
}

func (r *LineEventRepository) UpsertFollow(ctx context.Context, lineUserID, displayName string, pictureURL *string) error {
	query := `
		INSERT INTO line_follows (line_user_id, display_name, picture_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (line_user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    picture_url = EXCLUDED.picture_url,
		    followed_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, lineUserID, displayName, pictureURL)
	return err
}

// DeleteFollow handles unfollow events. It never touches established links,
// only future pending-identity visibility.
func (r *LineEventRepository) DeleteFollow(ctx context.Context, lineUserID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM line_follows WHERE line_user_id = $1`, lineUserID)
	return err
}

func (r *LineEventRepository) ListFollows(ctx context.Context) ([]models.LineFollow, error) {
	query := `SELECT line_user_id, display_name, picture_url, followed_at FROM line_follows ORDER BY followed_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	follows := make([]models.LineFollow, 0)
	for rows.Next() {
		var follow models.LineFollow
		if err := rows.Scan(&follow.LineUserID, &follow.DisplayName, &follow.PictureURL, &follow.FollowedAt); err != nil {
			return nil, err
		}
		follows = append(follows, follow)
	}
	return follows, rows.Err()
}

func (r *LineEventRepository) UpsertPortalVisit(ctx context.Context, lineUserID, displayName string) error {
	query := `
		INSERT INTO line_portal_visits (line_user_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (line_user_id) DO UPDATE
		SET display_name = CASE WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name ELSE line_portal_visits.display_name END,
		    last_visited_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, lineUserID, displayName)
	return err
}

func (r *LineEventRepository) ListPortalVisits(ctx context.Context) ([]models.LinePortalVisit, error) {
	query := `SELECT line_user_id, display_name, last_visited_at FROM line_portal_visits ORDER BY last_visited_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits := make([]models.LinePortalVisit, 0)
	for rows.Next() {
		var visit models.LinePortalVisit
		if err := rows.Scan(&visit.LineUserID, &visit.DisplayName, &visit.LastVisitedAt); err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}
