package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/deliveryio/internal/client/api"
	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/client/session"
	"github.com/dmitrijs2005/deliveryio/internal/filex"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
)

// PackageAPI is the part of the backend client used for packages and the
// lookup catalogs.
type PackageAPI interface {
	ListPackages(ctx context.Context) ([]models.Package, error)
	CreatePackage(ctx context.Context, p api.NewPackage) error
	ListTypes(ctx context.Context) ([]models.PackageType, error)
	ListBuildings(ctx context.Context) ([]models.Building, error)
	ResolveMediaURL(raw string) string
}

// SessionReader exposes the session without the right to change it.
type SessionReader interface {
	Snapshot() session.State
}

type PackageService interface {
	List(ctx context.Context) ([]models.Package, error)
	Create(ctx context.Context, draft models.PackageDraft) error
	Types(ctx context.Context) ([]models.PackageType, error)
	Buildings(ctx context.Context) ([]models.Building, error)
}

type packageService struct {
	api      PackageAPI
	sessions SessionReader
	log      logging.Logger
}

func NewPackageService(client PackageAPI, sessions SessionReader, log logging.Logger) PackageService {
	return &packageService{api: client, sessions: sessions, log: log.With("component", "packages")}
}

// List returns the packages of the signed-in user's building. A package
// is dropped only when both it and the user carry a building and the two
// differ.
func (s *packageService) List(ctx context.Context) ([]models.Package, error) {
	st := s.sessions.Snapshot()
	if !st.Session.Authenticated() {
		return nil, ErrNotSignedIn
	}

	all, err := s.api.ListPackages(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to list packages", "error", err)
		return nil, err
	}

	building := st.Session.User.Building
	out := make([]models.Package, 0, len(all))
	for _, p := range all {
		if building != "" && p.Building != "" && p.Building != building {
			continue
		}
		p.PhotoURL = s.api.ResolveMediaURL(p.PhotoURL)
		out = append(out, p)
	}

	s.log.Debug(ctx, "packages listed", "received", len(all), "kept", len(out))
	return out, nil
}

// Search keeps the packages matching query (see models.Package.Matches).
func Search(pkgs []models.Package, query string) []models.Package {
	if strings.TrimSpace(query) == "" {
		return pkgs
	}
	out := make([]models.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out
}

// Create validates the draft, loads its photo and posts it. An incomplete
// draft fails with ErrMissingFields before anything is sent.
func (s *packageService) Create(ctx context.Context, draft models.PackageDraft) error {
	if !draft.Complete() {
		return ErrMissingFields
	}
	if !s.sessions.Snapshot().Session.Authenticated() {
		return ErrNotSignedIn
	}

	photo, err := filex.ReadPhoto(draft.PhotoPath)
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}

	err = s.api.CreatePackage(ctx, api.NewPackage{
		OwnerName:     strings.TrimSpace(draft.OwnerName),
		ApNumber:      strings.TrimSpace(draft.ApNumber),
		PackageTypeID: draft.PackageTypeID,
		Photo:         photo,
	})
	if err != nil {
		s.log.Error(ctx, "failed to create package", "owner", draft.OwnerName, "error", err)
		return err
	}

	s.log.Info(ctx, "package registered", "owner", draft.OwnerName, "ap_number", draft.ApNumber)
	return nil
}

func (s *packageService) Types(ctx context.Context) ([]models.PackageType, error) {
	types, err := s.api.ListTypes(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to load package types", "error", err)
	}
	return types, err
}

func (s *packageService) Buildings(ctx context.Context) ([]models.Building, error) {
	buildings, err := s.api.ListBuildings(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to load buildings", "error", err)
	}
	return buildings, err
}
