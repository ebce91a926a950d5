package refresher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/sellerbackend/lib/mycontext"
	"github.com/MarcGrol/sellerbackend/lib/myerrors"
	"github.com/MarcGrol/sellerbackend/lib/myhttp"
	"github.com/MarcGrol/sellerbackend/lib/mylog"
	"github.com/MarcGrol/sellerbackend/lib/mytime"
	"github.com/MarcGrol/sellerbackend/services/mercado"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(credStore credstore.CredentialStore, refresher mercado.TokenRefresher, nower mytime.Nower, interval time.Duration) *webService {
	return &webService{
		service: newService(credStore, refresher, nower, interval),
		logger:  mylog.New("refresher"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/refresher/status", s.statusPage()).Methods("GET")
	router.HandleFunc("/refresher/force/{credentialUID}", s.forcePage()).Methods("POST")

	return nil
}

func (s *webService) Start(c context.Context) error {
	return s.service.Start(c)
}

func (s *webService) Stop(c context.Context) {
	s.service.Stop(c)
}

func (s *webService) statusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		status, err := s.service.getStatus(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, status)
	}
}

func (s *webService) forcePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		credentialUID := mux.Vars(r)["credentialUID"]
		if credentialUID == "" {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("missing credentialUID")))
			return
		}

		err := s.service.forceRefresh(c, credentialUID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, struct {
			Refreshed bool `json:"refreshed"`
		}{Refreshed: true})
	}
}
