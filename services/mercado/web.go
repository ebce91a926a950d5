package mercado

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/sellerbackend/lib/mycontext"
	"github.com/MarcGrol/sellerbackend/lib/mycrypto"
	"github.com/MarcGrol/sellerbackend/lib/myerrors"
	"github.com/MarcGrol/sellerbackend/lib/myhttp"
	"github.com/MarcGrol/sellerbackend/lib/mylog"
	"github.com/MarcGrol/sellerbackend/lib/mypublisher"
	"github.com/MarcGrol/sellerbackend/lib/mystate"
	"github.com/MarcGrol/sellerbackend/lib/mytime"
	"github.com/MarcGrol/sellerbackend/lib/myuuid"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
	"github.com/MarcGrol/sellerbackend/services/mercado/mercadoclient"
)

// UserUIDHeader carries the identity established by the surrounding
// platform. Authentication itself happens upstream.
const UserUIDHeader = "X-User-UID"

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(credStore credstore.CredentialStore, client mercadoclient.MercadoClient, encryptor mycrypto.Encryptor, stateTokener mystate.StateTokener, pub mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	return &webService{
		service: newService(credStore, client, encryptor, stateTokener, pub, nower, uuider),
		logger:  mylog.New("mercado"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/mercado/connect", s.connectPage()).Methods("POST")
	router.HandleFunc("/mercado/callback", s.callbackPage()).Methods("GET")  // browser redirect from the marketplace
	router.HandleFunc("/mercado/callback", s.callbackPage()).Methods("POST") // as used from screens
	router.HandleFunc("/mercado/status", s.statusPage()).Methods("GET")
	router.HandleFunc("/mercado/validate", s.validatePage()).Methods("POST")
	router.HandleFunc("/mercado/refresh", s.refreshPage()).Methods("POST")
	router.HandleFunc("/mercado/disconnect", s.disconnectPage()).Methods("POST")
	router.HandleFunc("/mercado/categories/{siteID}", s.categoriesPage()).Methods("GET")

	err := s.service.CreateTopics(context.Background())
	if err != nil {
		return err
	}

	return nil
}

// GetService exposes the use-case layer to in-process consumers like the
// background refresher.
func (s *webService) GetService() TokenRefresher {
	return s.service
}

// TokenRefresher is the part of the use-case layer the background
// refresher needs.
type TokenRefresher interface {
	RefreshCredential(c context.Context, credentialUID string) error
}

func (s *service) RefreshCredential(c context.Context, credentialUID string) error {
	return s.refreshToken(c, credentialUID)
}

type connectRequest struct {
	SiteID    string `form:"siteID"`
	ReturnURL string `form:"returnURL"`
}

func (s *webService) connectPage() http.HandlerFunc {
	formDecoder := form.NewDecoder()

	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		userUID, err := userUIDFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		err = r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		req := connectRequest{}
		err = formDecoder.Decode(&req, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(err))
			return
		}
		if req.SiteID == "" {
			errorWriter.WriteError(c, w, 4, myerrors.NewInvalidInputError(fmt.Errorf("missing siteID")))
			return
		}

		flowSetup, err := s.service.start(c, userUID, req.SiteID, req.ReturnURL, myhttp.HostnameWithScheme(r))
		if err != nil {
			errorWriter.WriteError(c, w, 5, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, flowSetup)
	}
}

func (s *webService) callbackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		userUID, err := userUIDFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		err = r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		status, returnURL, err := s.service.done(c, userUID, r.FormValue("code"), r.FormValue("state"), r.FormValue("code_verifier"))
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		if returnURL != "" {
			http.Redirect(w, r, returnURL, http.StatusSeeOther)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, status)
	}
}

func (s *webService) statusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		userUID, err := userUIDFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		status, err := s.service.getStatus(c, userUID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, status)
	}
}

func (s *webService) validatePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		userUID, err := userUIDFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		status, err := s.service.validate(c, userUID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, status)
	}
}

func (s *webService) refreshPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		userUID, err := userUIDFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		credential, exists, err := s.service.credStore.FindByUserUID(c, userUID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}
		if !exists {
			errorWriter.WriteError(c, w, 3, myerrors.NewNotFoundError(fmt.Errorf("no credential for user %s", userUID)))
			return
		}

		err = s.service.refreshToken(c, credential.UID)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		status, err := s.service.getStatus(c, userUID)
		if err != nil {
			errorWriter.WriteError(c, w, 5, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, status)
	}
}

func (s *webService) disconnectPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		userUID, err := userUIDFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		removed, err := s.service.disconnect(c, userUID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, struct {
			Removed bool `json:"removed"`
		}{Removed: removed})
	}
}

func (s *webService) categoriesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		siteID := mux.Vars(r)["siteID"]

		categories, err := s.service.getCategories(c, siteID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, categories)
	}
}

func userUIDFromRequest(r *http.Request) (string, error) {
	userUID := r.Header.Get(UserUIDHeader)
	if userUID == "" {
		return "", myerrors.NewAuthenticationError(fmt.Errorf("missing %s header", UserUIDHeader))
	}

	return userUID, nil
}
