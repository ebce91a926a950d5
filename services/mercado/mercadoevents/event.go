package mercadoevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/sellerbackend/lib/myerrors"
	"github.com/MarcGrol/sellerbackend/lib/myevents"
)

const (
	TopicName                      = "mercado"
	mercadoFlowStartedName         = TopicName + ".flow.started"
	mercadoAccountConnectedName    = TopicName + ".account.connected"
	mercadoTokenRefreshedName      = TopicName + ".token.refreshed"
	mercadoTokenRefreshFailedName  = TopicName + ".token.refreshFailed"
	mercadoAccountDisconnectedName = TopicName + ".account.disconnected"
)

type MercadoEventService interface {
	Subscribe(c context.Context) error
	OnMercadoFlowStarted(c context.Context, topic string, event MercadoFlowStarted) error
	OnMercadoAccountConnected(c context.Context, topic string, event MercadoAccountConnected) error
	OnMercadoTokenRefreshed(c context.Context, topic string, event MercadoTokenRefreshed) error
	OnMercadoTokenRefreshFailed(c context.Context, topic string, event MercadoTokenRefreshFailed) error
	OnMercadoAccountDisconnected(c context.Context, topic string, event MercadoAccountDisconnected) error
}

func DispatchEvent(c context.Context, reader io.Reader, service MercadoEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case mercadoFlowStartedName:
		{
			event := MercadoFlowStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnMercadoFlowStarted(c, envelope.Topic, event)
		}
	case mercadoAccountConnectedName:
		{
			event := MercadoAccountConnected{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnMercadoAccountConnected(c, envelope.Topic, event)
		}
	case mercadoTokenRefreshedName:
		{
			event := MercadoTokenRefreshed{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnMercadoTokenRefreshed(c, envelope.Topic, event)
		}
	case mercadoTokenRefreshFailedName:
		{
			event := MercadoTokenRefreshFailed{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnMercadoTokenRefreshFailed(c, envelope.Topic, event)
		}
	case mercadoAccountDisconnectedName:
		{
			event := MercadoAccountDisconnected{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnMercadoAccountDisconnected(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("%s", envelope.EventTypeName))
	}
}

type MercadoFlowStarted struct {
	UserUID       string
	CredentialUID string
	SiteID        string
}

func (e MercadoFlowStarted) GetEventTypeName() string {
	return mercadoFlowStartedName
}

func (e MercadoFlowStarted) GetAggregateName() string {
	return e.UserUID
}

type MercadoAccountConnected struct {
	UserUID       string
	CredentialUID string
	SiteID        string
	MeliUserID    int64
	Nickname      string
}

func (e MercadoAccountConnected) GetEventTypeName() string {
	return mercadoAccountConnectedName
}

func (e MercadoAccountConnected) GetAggregateName() string {
	return e.UserUID
}

type MercadoTokenRefreshed struct {
	UserUID       string
	CredentialUID string
	SiteID        string
	TokenDigest   string // one-way digest, never the token itself
}

func (e MercadoTokenRefreshed) GetEventTypeName() string {
	return mercadoTokenRefreshedName
}

func (e MercadoTokenRefreshed) GetAggregateName() string {
	return e.UserUID
}

type MercadoTokenRefreshFailed struct {
	UserUID       string
	CredentialUID string
	SiteID        string
	ErrorMessage  string
}

func (e MercadoTokenRefreshFailed) GetEventTypeName() string {
	return mercadoTokenRefreshFailedName
}

func (e MercadoTokenRefreshFailed) GetAggregateName() string {
	return e.UserUID
}

type MercadoAccountDisconnected struct {
	UserUID    string
	MeliUserID int64
	SiteID     string
}

func (e MercadoAccountDisconnected) GetEventTypeName() string {
	return mercadoAccountDisconnectedName
}

func (e MercadoAccountDisconnected) GetAggregateName() string {
	return e.UserUID
}
