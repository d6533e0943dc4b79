package models

import (
	"strconv"
	"strings"
	"time"
)

// Package is a delivery logged by a doorman.
type Package struct {
	ID              int64     `json:"id"`
	OwnerName       string    `json:"owner_name"`
	ApNumber        int       `json:"ap_number"`
	PackageType     *int64    `json:"package_type"`
	PackageTypeName string    `json:"package_type_name"`
	PhotoURL        string    `json:"photo_field"`
	Building        string    `json:"building,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Matches reports whether the package fits a free-text search: the owner
// name contains query case-insensitively, or the apartment number contains
// it. An empty query matches everything.
func (p Package) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.OwnerName), q) ||
		strings.Contains(strconv.Itoa(p.ApNumber), q)
}

// PackageType is an entry of the package type catalog.
type PackageType struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Building is an entry of the building catalog.
type Building struct {
	ID           int64  `json:"id"`
	BuildingName string `json:"building_name"`
}

// PackageDraft is the input of the "new package" form.
type PackageDraft struct {
	OwnerName     string
	ApNumber      string
	PackageTypeID int64
	PhotoPath     string
}

// Complete reports whether every field of the form was filled in.
func (d PackageDraft) Complete() bool {
	return strings.TrimSpace(d.OwnerName) != "" &&
		strings.TrimSpace(d.ApNumber) != "" &&
		d.PackageTypeID != 0 &&
		strings.TrimSpace(d.PhotoPath) != ""
}
