package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/internal/domain/entity"
	repo "github.com/devlinkhq/devlink/internal/domain/repository"
)

// ProfileService exposes the profile aggregate operations. All
// mutations run as single atomic repository calls; the aggregate logic
// itself lives on the entity.
type ProfileService struct {
	Profiles repo.ProfileRepository
	Logger   *logrus.Logger

	// Optional search index; nil disables indexing and search.
	ES      *elasticsearch.Client
	ESIndex string
}

func NewProfileService(profiles repo.ProfileRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ProfileService {
	return &ProfileService{Profiles: profiles, Logger: logger, ES: es, ESIndex: esIndex}
}

// Get returns the aggregate for ownerID with the owner's display
// fields resolved. Used for both self-view and public view.
func (s *ProfileService) Get(ctx context.Context, ownerID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListAll returns every profile with owner display fields, unfiltered.
func (s *ProfileService) ListAll(ctx context.Context) ([]*entity.Profile, error) {
	return s.Profiles.ListAll(ctx)
}

// Upsert creates the aggregate on first call for an owner, otherwise
// merges the partial update into the stored aggregate. Identical input
// applied twice yields identical stored state.
func (s *ProfileService) Upsert(ctx context.Context, ownerID string, u entity.ProfileUpdate) (*entity.Profile, error) {
	p, err := s.Profiles.Upsert(ctx, ownerID, func(p *entity.Profile) {
		p.ApplyUpdate(u)
	})
	if err != nil {
		return nil, err
	}
	s.indexProfile(ctx, p)
	return p, nil
}

// AddExperience assigns a fresh id and inserts the entry at the front
// of the work history.
func (s *ProfileService) AddExperience(ctx context.Context, ownerID string, e entity.Experience) (*entity.Profile, error) {
	p, err := s.Profiles.UpdateByOwner(ctx, ownerID, func(p *entity.Profile) error {
		p.AddExperience(e)
		return nil
	})
	return s.afterMutation(ctx, p, err)
}

// RemoveExperience deletes the entry with the given id. An unknown id
// leaves the aggregate untouched and still reports success.
func (s *ProfileService) RemoveExperience(ctx context.Context, ownerID, entryID string) (*entity.Profile, error) {
	p, err := s.Profiles.UpdateByOwner(ctx, ownerID, func(p *entity.Profile) error {
		if !p.RemoveExperience(entryID) && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": ownerID, "entry_id": entryID}).Debug("experience entry not present, nothing removed")
		}
		return nil
	})
	return s.afterMutation(ctx, p, err)
}

// AddEducation inserts the entry at the front of the education history.
func (s *ProfileService) AddEducation(ctx context.Context, ownerID string, e entity.Education) (*entity.Profile, error) {
	p, err := s.Profiles.UpdateByOwner(ctx, ownerID, func(p *entity.Profile) error {
		p.AddEducation(e)
		return nil
	})
	return s.afterMutation(ctx, p, err)
}

// RemoveEducation deletes the entry with the given id; unknown ids are
// a no-op, as with RemoveExperience.
func (s *ProfileService) RemoveEducation(ctx context.Context, ownerID, entryID string) (*entity.Profile, error) {
	p, err := s.Profiles.UpdateByOwner(ctx, ownerID, func(p *entity.Profile) error {
		if !p.RemoveEducation(entryID) && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": ownerID, "entry_id": entryID}).Debug("education entry not present, nothing removed")
		}
		return nil
	})
	return s.afterMutation(ctx, p, err)
}

func (s *ProfileService) afterMutation(ctx context.Context, p *entity.Profile, err error) (*entity.Profile, error) {
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.indexProfile(ctx, p)
	return p, nil
}

func (s *ProfileService) indexProfile(ctx context.Context, p *entity.Profile) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"user_id":    p.UserID,
		"owner_name": p.OwnerName,
		"status":     p.Status,
		"location":   p.Location,
		"company":    p.Company,
		"bio":        p.Bio,
		"skills":     p.Skills,
		"updated_at": p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.UserID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", p.UserID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", p.UserID).Warn("es index response error")
	}
}

// Search performs a multi_match query over status, skills, bio, and
// owner name. Returns empty results when no index is configured.
func (s *ProfileService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"skills^2", "status", "bio", "owner_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
