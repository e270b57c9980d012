package model

import "time"

const (
	StatusAll     = "all"
	StatusUsed    = "used"
	StatusUnused  = "unused"
	StatusExpired = "expired"
)

// Code is a prepaid verification code. The code text doubles as the
// document id.
type Code struct {
	ID          string     `json:"id" bson:"_id"`
	Code        string     `json:"code" bson:"code"`
	Value       int        `json:"value" bson:"value"`
	Used        bool       `json:"used" bson:"used"`
	UsedBy      string     `json:"usedBy,omitempty" bson:"usedBy,omitempty"`
	UsedByEmail string     `json:"usedByEmail,omitempty" bson:"usedByEmail,omitempty"`
	UsedAt      *time.Time `json:"usedAt" bson:"usedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt" bson:"expiresAt,omitempty"`
	CreatedBy   string     `json:"createdBy" bson:"createdBy"`
	Prefix      string     `json:"prefix,omitempty" bson:"prefix,omitempty"`
	Imported    bool       `json:"imported,omitempty" bson:"imported,omitempty"`
	ImportedAt  *time.Time `json:"importedAt,omitempty" bson:"importedAt,omitempty"`
}

func (c *Code) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// StatusAt is used, expired or unused, in that order of precedence.
func (c *Code) StatusAt(now time.Time) string {
	switch {
	case c.Used:
		return StatusUsed
	case c.IsExpired(now):
		return StatusExpired
	}
	return StatusUnused
}

// CodeView is a code as listed in the admin table.
type CodeView struct {
	*Code
	Status  string `json:"status"`
	Expired bool   `json:"expired"`
}

func (c *Code) View(now time.Time) CodeView {
	return CodeView{Code: c, Status: c.StatusAt(now), Expired: c.IsExpired(now)}
}

// CodeFilter narrows a listing. Used is nil for every code.
type CodeFilter struct {
	Used *bool
}

// CodePatch changes the use marker and the expiry. A nil field is left
// alone.
type CodePatch struct {
	Used        *bool
	UsedBy      string
	UsedByEmail string
	UsedAt      *time.Time
	ExpiresAt   *time.Time
}

// Page is one page of the admin listing.
type Page struct {
	Codes      []CodeView `json:"codes"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}

// Stats counts codes by status and sums their face value.
type Stats struct {
	Total      int `json:"total"`
	Unused     int `json:"unused"`
	Used       int `json:"used"`
	Expired    int `json:"expired"`
	TotalValue int `json:"total_value"`
	UsedValue  int `json:"used_value"`
}
