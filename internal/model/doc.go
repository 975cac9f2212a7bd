// Package model holds the persisted domain types: cases and the
// country -> province -> county place hierarchy.
//
// Write inputs are checked with Validate (go-playground/validator) before
// they reach the store. Place names pass through NormalizeName on every
// write and lookup.
package model
