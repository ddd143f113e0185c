package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SocialLinks holds the optional social network URLs of a profile.
type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is one entry of a profile's work history. IDs are assigned
// once on insertion and stay stable for the life of the aggregate.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is one entry of a profile's education history.
type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Profile is the profile aggregate: scalar fields plus ordered
// experience/education histories, treated as one unit of consistency.
// UserID is unique and immutable once the profile exists.
type Profile struct {
	ID             string
	UserID         string
	Company        string
	Website        string
	Location       string
	Status         string
	Bio            string
	GithubUsername string
	Skills         []string
	Social         SocialLinks
	Experience     []Experience
	Education      []Education
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Display fields resolved from the owning user on reads.
	OwnerName   string
	OwnerAvatar string
}

// ProfileUpdate is a partial update: nil fields are left untouched,
// non-nil fields overwrite. Skills of nil means "absent"; an empty
// non-nil slice clears the list.
type ProfileUpdate struct {
	Company        *string
	Website        *string
	Location       *string
	Status         *string
	Bio            *string
	GithubUsername *string
	Skills         []string
	Social         SocialUpdate
}

// SocialUpdate mirrors SocialLinks with presence-aware fields; the
// social object is merged key by key, never replaced wholesale.
type SocialUpdate struct {
	Youtube   *string
	Twitter   *string
	Facebook  *string
	Linkedin  *string
	Instagram *string
}

// ParseSkills splits a comma-separated skill list, trimming each
// segment and dropping segments that are empty after trimming.
// Order follows input order.
func ParseSkills(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyUpdate merges a partial update into the profile. Re-applying the
// same update is a no-op, so upserts stay idempotent.
func (p *Profile) ApplyUpdate(u ProfileUpdate) {
	setIf(&p.Company, u.Company)
	setIf(&p.Website, u.Website)
	setIf(&p.Location, u.Location)
	setIf(&p.Status, u.Status)
	setIf(&p.Bio, u.Bio)
	setIf(&p.GithubUsername, u.GithubUsername)
	if u.Skills != nil {
		p.Skills = u.Skills
	}
	setIf(&p.Social.Youtube, u.Social.Youtube)
	setIf(&p.Social.Twitter, u.Social.Twitter)
	setIf(&p.Social.Facebook, u.Social.Facebook)
	setIf(&p.Social.Linkedin, u.Social.Linkedin)
	setIf(&p.Social.Instagram, u.Social.Instagram)
}

func setIf(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// AddExperience assigns a fresh id when the entry carries none and
// inserts the entry at position 0, most-recent-first.
func (p *Profile) AddExperience(e Experience) Experience {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	p.Experience = append([]Experience{e}, p.Experience...)
	return e
}

// RemoveExperience deletes the entry with the given id, preserving the
// relative order of the rest. An unknown id leaves the history
// unchanged and reports false.
func (p *Profile) RemoveExperience(id string) bool {
	for i, e := range p.Experience {
		if e.ID == id {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
			return true
		}
	}
	return false
}

// AddEducation inserts at position 0; see AddExperience.
func (p *Profile) AddEducation(e Education) Education {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	p.Education = append([]Education{e}, p.Education...)
	return e
}

// RemoveEducation deletes the entry with the given id; see RemoveExperience.
func (p *Profile) RemoveEducation(id string) bool {
	for i, e := range p.Education {
		if e.ID == id {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)
			return true
		}
	}
	return false
}
