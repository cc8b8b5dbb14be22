package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// District is one electoral constituency. ID is the stable primary key
// used across snapshots; Name is display-only and is never used as a
// join key outside the geocode name join, where no id exists.
type District struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code" gorm:"size:2;index"`
	Region      string `json:"region,omitempty"`
}

// Representative is an elected official a letter can be addressed to.
// DistrictID binds lower-chamber members to their constituency (several
// members can share one district where list seats are assigned for
// contact purposes); upper-chamber members carry a RegionCode instead.
type Representative struct {
	RowID       uuid.UUID      `json:"-" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ExternalID  string         `json:"external_id" gorm:"uniqueIndex"`
	FullName    string         `json:"full_name"`
	Party       string         `json:"party"`
	Role        string         `json:"role"` // e.g. "MP", "MdB", "Senator"
	CountryCode string         `json:"country_code" gorm:"size:2;index"`
	DistrictID  string         `json:"district_id,omitempty" gorm:"index"`
	RegionCode  string         `json:"region_code,omitempty" gorm:"index"`
	Email       string         `json:"email"`
	WebFormURL  string         `json:"web_form_url"`
	Phone       string         `json:"phone"`
	URLs        pq.StringArray `json:"urls" gorm:"type:text[]"`

	// Provenance / syncing
	Source     string    `json:"source"`
	LastSynced time.Time `json:"last_synced"`
}

func (District) TableName() string {
	return "districts.districts"
}

func (Representative) TableName() string {
	return "districts.representatives"
}
