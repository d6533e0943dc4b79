package services

import (
	"errors"

	"github.com/dmitrijs2005/deliveryio/internal/client/api"
)

var (
	// ErrBusy is returned when a sign-in or registration starts while
	// another one is still in flight.
	ErrBusy          = errors.New("another request is in progress")
	ErrMissingFields = errors.New("required fields are missing")
	ErrNotSignedIn   = errors.New("not signed in")
)

// User-facing messages. Causes are logged; only these strings reach the user.
const (
	MsgSignInFailed    = "Credenciais inválidas ou erro no servidor"
	MsgUsernameTaken   = "Usuário já existe"
	MsgRegisterFailed  = "Erro ao criar conta"
	MsgRegisterFields  = "Preencha todos os campos e selecione um prédio"
	MsgPackageFields   = "Preencha todos os campos e tire uma foto."
	MsgPackageFailed   = "Falha ao registrar encomenda. Verifique os dados."
	MsgListFailed      = "Não foi possível carregar as encomendas."
	MsgInvalidFormat   = "Formato de dados inválido."
	MsgTypesFailed     = "Não foi possível carregar os tipos de encomenda."
	MsgBuildingsFailed = "Não foi possível carregar a lista de prédios."
	MsgRequestInFlight = "Aguarde a conclusão da operação em andamento."
	MsgSessionRequired = "Faça login para continuar."
)

// ListMessage maps a List failure to the message shown above the list.
func ListMessage(err error) string {
	switch {
	case errors.Is(err, api.ErrInvalidFormat):
		return MsgInvalidFormat
	case errors.Is(err, ErrNotSignedIn):
		return MsgSessionRequired
	default:
		return MsgListFailed
	}
}
