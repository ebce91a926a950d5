package refresher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MarcGrol/sellerbackend/lib/myerrors"
	"github.com/MarcGrol/sellerbackend/lib/mylog"
	"github.com/MarcGrol/sellerbackend/lib/mytime"
	"github.com/MarcGrol/sellerbackend/services/mercado"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
)

const (
	defaultInterval = 30 * time.Minute
	maxParallel     = 4
)

// RunSummary describes the outcome of one refresh sweep.
type RunSummary struct {
	StartedAt  time.Time `json:"startedAt"`
	Duration   string    `json:"duration"`
	Candidates int       `json:"candidates"`
	Refreshed  int       `json:"refreshed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}

type Status struct {
	Running            bool        `json:"running"`
	IntervalSeconds    int         `json:"intervalSeconds"`
	LastRun            *RunSummary `json:"lastRun,omitempty"`
	ExpiringWithinHour int         `json:"expiringWithinHour"`
	InvalidCredentials int         `json:"invalidCredentials"`
}

type service struct {
	credStore credstore.CredentialStore
	refresher mercado.TokenRefresher
	nower     mytime.Nower
	logger    mylog.Logger
	interval  time.Duration

	mutex   sync.Mutex
	running bool
	cancel  context.CancelFunc
	stopped chan struct{}
	lastRun *RunSummary
}

func newService(credStore credstore.CredentialStore, refresher mercado.TokenRefresher, nower mytime.Nower, interval time.Duration) *service {
	return &service{
		credStore: credStore,
		refresher: refresher,
		nower:     nower,
		logger:    mylog.New("refresher"),
		interval:  interval,
	}
}

// IntervalFromEnv reads TOKEN_REFRESH_INTERVAL (a Go duration like "15m")
// and falls back to 30 minutes.
func IntervalFromEnv() time.Duration {
	value := os.Getenv("TOKEN_REFRESH_INTERVAL")
	if value == "" {
		return defaultInterval
	}

	interval, err := time.ParseDuration(value)
	if err != nil || interval <= 0 {
		return defaultInterval
	}

	return interval
}

// Start launches the periodic sweep. Calling it on a running service is
// a no-op.
func (s *service) Start(c context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		s.logger.Log(c, "", mylog.SeverityWarn, "Refresher already running")
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})
	s.running = true

	s.logger.Log(c, "", mylog.SeverityInfo, "Starting refresher with interval %s", s.interval)

	go s.run(runCtx)

	return nil
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
// Calling it on a stopped service is a no-op.
func (s *service) Stop(c context.Context) {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	cancel := s.cancel
	stopped := s.stopped
	s.mutex.Unlock()

	cancel()
	<-stopped

	s.mutex.Lock()
	s.running = false
	s.mutex.Unlock()

	s.logger.Log(c, "", mylog.SeverityInfo, "Refresher stopped")
}

func (s *service) run(c context.Context) {
	defer close(s.stopped)

	// first sweep right away, then on the ticker
	s.sweep(c)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
			s.sweep(c)
		}
	}
}

// sweep refreshes every credential whose access token becomes due before
// the next sweep would see it. Failures are counted, never fatal.
func (s *service) sweep(c context.Context) RunSummary {
	now := s.nower.Now()
	started := time.Now()

	credentials, err := s.credStore.FindExpiringTokens(c, now.Add(s.interval))
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Error finding expiring tokens: %s", err)
		return RunSummary{StartedAt: now}
	}

	var refreshed, failed, skipped atomic.Int64

	group, groupCtx := errgroup.WithContext(c)
	group.SetLimit(maxParallel)

	for _, credential := range credentials {
		credential := credential

		if credential.RefreshTokenExpired(now) {
			// terminal, only re-authorization helps
			skipped.Add(1)
			continue
		}

		group.Go(func() error {
			err := s.refresher.RefreshCredential(groupCtx, credential.UID)
			if err != nil {
				s.logger.Log(c, credential.UID, mylog.SeverityWarn, "Refresh of credential %s failed: %s", credential.UID, err)
				failed.Add(1)
				refreshAttempts.WithLabelValues(resultFailure).Inc()
				return nil
			}

			refreshed.Add(1)
			refreshAttempts.WithLabelValues(resultSuccess).Inc()
			return nil
		})
	}

	// sweep errors are per credential, the group itself never fails
	_ = group.Wait()

	summary := RunSummary{
		StartedAt:  now,
		Duration:   time.Since(started).Round(time.Millisecond).String(),
		Candidates: len(credentials),
		Refreshed:  int(refreshed.Load()),
		Failed:     int(failed.Load()),
		Skipped:    int(skipped.Load()),
	}

	sweepDuration.Observe(time.Since(started).Seconds())

	s.mutex.Lock()
	s.lastRun = &summary
	s.mutex.Unlock()

	s.logger.Log(c, "", mylog.SeverityInfo, "Refresh sweep done: %d candidates, %d refreshed, %d failed, %d skipped",
		summary.Candidates, summary.Refreshed, summary.Failed, summary.Skipped)

	return summary
}

func (s *service) forceRefresh(c context.Context, credentialUID string) error {
	s.logger.Log(c, credentialUID, mylog.SeverityInfo, "Forced refresh of credential %s", credentialUID)

	return s.refresher.RefreshCredential(c, credentialUID)
}

func (s *service) getStatus(c context.Context) (Status, error) {
	now := s.nower.Now()

	expiring, err := s.credStore.FindExpiringTokens(c, now.Add(time.Hour))
	if err != nil {
		return Status{}, myerrors.NewInternalError(fmt.Errorf("error finding expiring tokens: %s", err))
	}

	invalid, err := s.credStore.FindInvalidCredentials(c)
	if err != nil {
		return Status{}, myerrors.NewInternalError(fmt.Errorf("error finding invalid credentials: %s", err))
	}

	expiringGauge.Set(float64(len(expiring)))
	invalidGauge.Set(float64(len(invalid)))

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return Status{
		Running:            s.running,
		IntervalSeconds:    int(s.interval.Seconds()),
		LastRun:            s.lastRun,
		ExpiringWithinHour: len(expiring),
		InvalidCredentials: len(invalid),
	}, nil
}
