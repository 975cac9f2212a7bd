package model

import (
	"strings"
	"time"
)

// CaseType is the kind of count a case row carries.
type CaseType string

const (
	CaseConfirmed CaseType = "confirmed"
	CaseDead      CaseType = "dead"
	CaseRecovered CaseType = "recovered"
)

// CaseTypes lists every case type in declaration order.
var CaseTypes = []CaseType{CaseConfirmed, CaseDead, CaseRecovered}

// ParseCaseType matches s case-insensitively against the known case types.
func ParseCaseType(s string) (CaseType, bool) {
	for _, t := range CaseTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// ConflictStrategy selects what an upsert does when the case key already exists.
type ConflictStrategy string

const (
	// ConflictReplace overwrites the stored amount.
	ConflictReplace ConflictStrategy = "replace"
	// ConflictAdd adds the new amount to the stored amount.
	ConflictAdd ConflictStrategy = "add"
)

// ParseConflictStrategy matches s case-insensitively.
func ParseConflictStrategy(s string) (ConflictStrategy, bool) {
	switch strings.ToLower(s) {
	case string(ConflictReplace):
		return ConflictReplace, true
	case string(ConflictAdd):
		return ConflictAdd, true
	}
	return "", false
}

// DateLayout is the storage format of case dates. Dates compare correctly as text.
const DateLayout = "2006-01-02"

// Case is one count of a case type for a place on a day.
//
// (Type, Date, CountryID, ProvinceID or -1, CountyID or -1) is unique in the store.
type Case struct {
	Type       CaseType  `json:"type" validate:"required,oneof=confirmed dead recovered"`
	Amount     int64     `json:"amount" validate:"gte=0"`
	Date       time.Time `json:"date" validate:"required"`
	CountryID  int64     `json:"country_id" validate:"gt=0"`
	ProvinceID *int64    `json:"province_id,omitempty" validate:"omitempty,gt=0"`
	CountyID   *int64    `json:"county_id,omitempty" validate:"omitempty,gt=0"`
}

// Day returns the case date in storage format.
func (c Case) Day() string {
	return c.Date.Format(DateLayout)
}
