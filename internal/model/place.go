package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PlaceKind is a level of the place hierarchy: county -> province -> country.
type PlaceKind string

const (
	PlaceCountry  PlaceKind = "country"
	PlaceProvince PlaceKind = "province"
	PlaceCounty   PlaceKind = "county"
)

// Table returns the table holding places of this kind, or "" for an unknown kind.
func (k PlaceKind) Table() string {
	switch k {
	case PlaceCountry:
		return "countries"
	case PlaceProvince:
		return "provinces"
	case PlaceCounty:
		return "counties"
	}
	return ""
}

// PlaceProperty is a column places can be looked up by.
type PlaceProperty string

const (
	PropertyID     PlaceProperty = "id"
	PropertyName   PlaceProperty = "name"
	PropertyAlpha2 PlaceProperty = "alpha2"
	PropertyAlpha3 PlaceProperty = "alpha3"
	PropertyCode   PlaceProperty = "code"
)

// Supports reports whether places of kind k have column p.
func (k PlaceKind) Supports(p PlaceProperty) bool {
	switch p {
	case PropertyID, PropertyName:
		return k.Table() != ""
	case PropertyAlpha2, PropertyAlpha3:
		return k == PlaceCountry
	case PropertyCode:
		return k == PlaceProvince || k == PlaceCounty
	}
	return false
}

// Country is the root of the place hierarchy.
type Country struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name" validate:"required"`
	Alpha2 string  `json:"alpha2" validate:"required,len=2,alpha"`
	Alpha3 string  `json:"alpha3,omitempty" validate:"omitempty,len=3,alpha"`
	Lat    float64 `json:"lat" validate:"latitude"`
	Lng    float64 `json:"lng" validate:"longitude"`
}

// Province belongs to a country.
type Province struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name" validate:"required"`
	Code      string  `json:"code,omitempty"`
	Lat       float64 `json:"lat" validate:"latitude"`
	Lng       float64 `json:"lng" validate:"longitude"`
	CountryID int64   `json:"country_id" validate:"gt=0"`
}

// County belongs to a province.
type County struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name" validate:"required"`
	Code       string  `json:"code,omitempty"`
	Lat        float64 `json:"lat" validate:"latitude"`
	Lng        float64 `json:"lng" validate:"longitude"`
	ProvinceID int64   `json:"province_id" validate:"gt=0"`
}

// NormalizeName trims s and converts it to Unicode NFC, so "Côte d'Ivoire"
// typed with a combining accent matches the stored precomposed form.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
