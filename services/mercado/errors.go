package mercado

import (
	"fmt"
)

// ErrManagerAccountRequired is returned when a collaborator sub-account
// tries to authorize the integration. Nothing is persisted in that case.
type ErrManagerAccountRequired struct {
	Nickname string
}

func (e ErrManagerAccountRequired) Error() string {
	return fmt.Sprintf("account '%s' is a collaborator account and cannot authorize this integration: "+
		"ask the owner of the MercadoLibre account to log in and connect", e.Nickname)
}
