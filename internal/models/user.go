package models

import "time"

// AccountType classifies what kind of participant a user is.
type AccountType string

const (
	AccountIndividual AccountType = "individual"
	AccountRecycler   AccountType = "recycler"
	AccountCollector  AccountType = "collector"
	AccountBusiness   AccountType = "business"
	AccountAdmin      AccountType = "admin"
)

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountIndividual, AccountRecycler, AccountCollector, AccountBusiness, AccountAdmin:
		return true
	}
	return false
}

// UserStats are the running totals maintained on every recorded analysis.
type UserStats struct {
	TotalAnalyses int        `json:"totalAnalyses"`
	TotalCO2Saved float64    `json:"totalCO2Saved"`
	LastAnalysis  *time.Time `json:"lastAnalysis"`
}

// User represents a user account in the system.
type User struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never expose this to the client
	Type         AccountType `json:"type"`
	CreatedAt    time.Time   `json:"createdAt"`
	Stats        UserStats   `json:"stats"`
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched. There is deliberately no password field.
type ProfileUpdate struct {
	Name  *string
	Email *string
	Type  *AccountType
}
