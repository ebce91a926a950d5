package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/sellerbackend/lib/mycontext"
	"github.com/MarcGrol/sellerbackend/lib/myhttp"
	"github.com/MarcGrol/sellerbackend/lib/mylog"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
)

type webService struct {
	logger    mylog.Logger
	credStore credstore.CredentialStore
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewService(credStore credstore.CredentialStore) *webService {
	return &webService{
		logger:    mylog.New("warmup"),
		credStore: credStore,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

// warmupPage forces the datastore connection to be set up before real
// traffic arrives.
func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		_, _, err := s.credStore.FindByUID(c, "warmup")
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
