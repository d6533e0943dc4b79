package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/client/router"
	"github.com/dmitrijs2005/deliveryio/internal/client/services"
	"github.com/dmitrijs2005/deliveryio/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. On failure the auth service's
// message is printed; on success the guard moves the user to the package
// list. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Usuário", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if username == "" || len(password) == 0 {
		a.println("Preencha usuário e senha")
		return services.ErrMissingFields
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.authService.SignIn(ctx, username, password); err != nil {
		if errors.Is(err, services.ErrBusy) {
			a.println(services.MsgRequestInFlight)
		} else {
			a.println(a.authService.LastError())
		}
		return err
	}

	a.println("Bem-vindo,", username)
	return nil
}

// Register opens /register, lists the buildings and submits the sign-up
// form. On success the user is sent back to /login.
func (a *App) Register(ctx context.Context) error {
	a.router.Push(router.LocationRegister)

	buildings, err := a.loadBuildings(ctx)
	if err != nil {
		a.println(services.MsgBuildingsFailed)
		return err
	}
	for _, b := range buildings {
		a.println(b.ID, b.BuildingName)
	}

	var reg models.Registration
	if reg.Username, err = getSimpleText(a.reader, "Usuário", a.out); err != nil {
		return err
	}
	if reg.Email, err = getSimpleText(a.reader, "E-mail", a.out); err != nil {
		return err
	}
	if reg.Password, err = getPassword(a.reader, a.out); err != nil {
		return err
	}
	defer common.WipeByteArray(reg.Password)

	if reg.BuildingID, err = GetID(a.reader, "Prédio (id)", a.out); err != nil {
		a.println(services.MsgRegisterFields)
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.authService.Register(ctx, reg); err != nil {
		if errors.Is(err, services.ErrBusy) {
			a.println(services.MsgRequestInFlight)
		} else {
			a.println(a.authService.LastError())
		}
		return err
	}

	a.println("Conta criada com sucesso! Faça login.")
	if a.router.Location() == router.LocationRegister {
		a.router.Back()
	}
	return nil
}

func (a *App) loadBuildings(ctx context.Context) ([]models.Building, error) {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	return a.packageService.Buildings(ctx)
}

// Logout forgets the session; the guard then opens /login.
func (a *App) Logout(ctx context.Context) error {
	return a.authService.SignOut(ctx)
}

// WhoAmI prints the signed-in user and, when the token is a JWT, its expiry.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.store.Snapshot()
	if !st.Session.Authenticated() {
		a.println(services.MsgSessionRequired)
		return services.ErrNotSignedIn
	}

	u := st.Session.User
	a.println("Usuário:", u.Username)
	a.println("Prédio:", u.Building)
	if u.ID != 0 {
		a.println("ID:", u.ID)
	}

	info, err := services.InspectToken(st.Token())
	if err != nil || info.ExpiresAt.IsZero() {
		return nil
	}
	a.println("Token expira em:", info.ExpiresAt.Local().Format(time.DateTime))
	return nil
}
