package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/deliveryio/internal/client/api"
	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/client/router"
	"github.com/dmitrijs2005/deliveryio/internal/client/services"
)

// List opens the package list, fetches it and prints the packages matching
// query.
func (a *App) List(ctx context.Context, query string) error {
	a.goHome()

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	pkgs, err := a.packageService.List(ctx)
	if err != nil {
		a.println(services.ListMessage(err))
		return err
	}

	pkgs = services.Search(pkgs, query)
	if len(pkgs) == 0 {
		a.println("Nenhuma encomenda encontrada.")
		return nil
	}
	for _, p := range pkgs {
		a.printPackage(p)
	}
	return nil
}

func (a *App) printPackage(p models.Package) {
	kind := p.PackageTypeName
	if kind == "" && p.PackageType != nil {
		kind = "#" + strconv.FormatInt(*p.PackageType, 10)
	}
	a.println(strconv.FormatInt(p.ID, 10), p.OwnerName, "ap.", p.ApNumber, kind, p.PhotoURL)
}

// goHome unwinds the stack to "/".
func (a *App) goHome() {
	for a.router.Location() != router.LocationHome && a.router.Back() {
	}
	if a.router.Location() != router.LocationHome {
		a.router.Replace(router.LocationHome)
	}
}

// Types prints the package type catalog.
func (a *App) Types(ctx context.Context) error {
	types, err := a.loadTypes(ctx)
	if err != nil {
		a.println(services.MsgTypesFailed)
		return err
	}
	for _, t := range types {
		a.println(t.ID, t.Type)
	}
	return nil
}

func (a *App) loadTypes(ctx context.Context) ([]models.PackageType, error) {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	return a.packageService.Types(ctx)
}

// Post opens /post, runs the package form and returns to the previous
// screen once the package is registered. On failure the user stays on
// /post.
func (a *App) Post(ctx context.Context) error {
	a.router.Push(router.LocationPost)

	types, err := a.loadTypes(ctx)
	if err != nil {
		a.println(services.MsgTypesFailed)
		return err
	}
	for _, t := range types {
		a.println(t.ID, t.Type)
	}

	var draft models.PackageDraft
	if draft.OwnerName, err = getSimpleText(a.reader, "Nome do morador", a.out); err != nil {
		return err
	}
	if draft.ApNumber, err = getSimpleText(a.reader, "Apartamento", a.out); err != nil {
		return err
	}
	if draft.PackageTypeID, err = GetID(a.reader, "Tipo (id)", a.out); err != nil {
		a.println(services.MsgPackageFields)
		return err
	}
	if draft.PhotoPath, err = getSimpleText(a.reader, "Foto (caminho do arquivo)", a.out); err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.packageService.Create(ctx, draft); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			a.println(services.MsgPackageFields)
		case errors.Is(err, services.ErrNotSignedIn):
			a.println(services.MsgSessionRequired)
		case errors.Is(err, api.ErrUnavailable):
			a.println(services.MsgPackageFailed, "(servidor indisponível)")
		default:
			a.println(services.MsgPackageFailed)
		}
		return err
	}

	a.println("Encomenda registrada com sucesso!")
	if a.router.Location() == router.LocationPost {
		a.router.Back()
	}
	return nil
}

// Back returns to the previous screen.
func (a *App) Back(ctx context.Context) error {
	if !a.router.Back() {
		a.println("Nada para voltar.")
	}
	return nil
}
