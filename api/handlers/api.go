package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/osiahq/founding-circle-api/api"
	"github.com/osiahq/founding-circle-api/api/scheduler"
	"github.com/osiahq/founding-circle-api/config"
	"github.com/osiahq/founding-circle-api/databases"
	"github.com/osiahq/founding-circle-api/mailer"
	"github.com/osiahq/founding-circle-api/models"
	"github.com/osiahq/founding-circle-api/waitlist"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	m := api.AdminAuth{Conf: &a.Config}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	memberDB := databases.NewMemberDatabase(a.dbHelper)
	counterDB := databases.NewCounterDatabase(a.dbHelper)
	service := waitlist.NewService(memberDB, counterDB, mailer.NewSendGridNotifier())

	wl := Waitlist{Service: service}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	// public: signup flow and capacity messaging
	apiCreate.Handle("/waitlist/join", http.HandlerFunc(wl.JoinWaitlistHandler)).Methods("POST")
	apiCreate.Handle("/waitlist/validate", http.HandlerFunc(wl.ValidateAccessCodeHandler)).Methods("POST")
	apiCreate.Handle("/waitlist/stats", http.HandlerFunc(wl.WaitlistStatsHandler)).Methods("GET")

	// admin: promotion and queue management
	apiCreate.Handle("/members", api.Middleware(http.HandlerFunc(wl.MembersHandler))).Methods("GET")
	apiCreate.Handle("/members/bulk-approve", api.Middleware(http.HandlerFunc(wl.BulkApproveHandler))).Methods("POST")
	apiCreate.Handle("/members/{member_id}/approve", api.Middleware(http.HandlerFunc(wl.ApproveMemberHandler))).Methods("POST")
	apiCreate.Handle("/members/{member_id}", api.Middleware(http.HandlerFunc(wl.DeleteMemberHandler))).Methods("DELETE")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("founding-circle-api has connected to the database")

	memberDB := databases.NewMemberDatabase(a.dbHelper)
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()
	if err := memberDB.EnsureIndexes(ctx); err != nil {
		zap.S().With(err).Error("failed to ensure member indexes")
		return err
	}

	// initialize api router
	a.initializeRoutes()

	// start the daily digest scheduler
	counterDB := databases.NewCounterDatabase(a.dbHelper)
	service := waitlist.NewService(memberDB, counterDB, mailer.NewSendGridNotifier())
	a.scheduler = scheduler.NewScheduler(service, databases.NewSchedulerLockDatabase(a.dbHelper), &a.Config)
	a.scheduler.Start()

	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
