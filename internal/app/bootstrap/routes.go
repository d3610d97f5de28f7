// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/festhub/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/festhub/internal/app/features/heartbeat"
	loginfeature "github.com/dalemusser/festhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/festhub/internal/app/features/logout"
	programsfeature "github.com/dalemusser/festhub/internal/app/features/programs"
	registrationsfeature "github.com/dalemusser/festhub/internal/app/features/registrations"
	replacementsfeature "github.com/dalemusser/festhub/internal/app/features/replacements"
	schedulefeature "github.com/dalemusser/festhub/internal/app/features/schedule"
	studentsfeature "github.com/dalemusser/festhub/internal/app/features/students"
	teamsfeature "github.com/dalemusser/festhub/internal/app/features/teams"
	programstore "github.com/dalemusser/festhub/internal/app/store/programs"
	registrationstore "github.com/dalemusser/festhub/internal/app/store/registrations"
	replacementstore "github.com/dalemusser/festhub/internal/app/store/replacements"
	schedulestore "github.com/dalemusser/festhub/internal/app/store/schedule"
	studentstore "github.com/dalemusser/festhub/internal/app/store/students"
	teamstore "github.com/dalemusser/festhub/internal/app/store/teams"
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/dalemusser/festhub/internal/app/system/notify"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. FestHub initializes the session store,
// applies session middleware, and mounts the JSON API routers for the team
// portal and the admin console.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.FestHubMongoDatabase
	teams := teamstore.New(db)
	students := studentstore.New(db)
	programs := programstore.New(db)
	registrations := registrationstore.New(db)
	replacements := replacementstore.New(db)
	schedule := schedulestore.New(db)

	notifier := notify.NewLogNotifier(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the session into context if signed in.
	r.Use(auth.LoadSession)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.FestHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(r chi.Router) {
		heartbeatHandler := heartbeatfeature.NewHandler(schedule, logger)
		r.Mount("/heartbeat", heartbeatfeature.Routes(heartbeatHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(teams, appCfg.AdminUser, appCfg.AdminPasswordHash, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))

		// Admin team registry
		teamsHandler := teamsfeature.NewHandler(teams, logger)
		r.Mount("/teams", teamsfeature.Routes(teamsHandler))

		// Team portal rosters
		studentsHandler := studentsfeature.NewHandler(students, notifier, logger)
		r.Mount("/students", studentsfeature.Routes(studentsHandler))

		// Program catalog
		programsHandler := programsfeature.NewHandler(programs, registrations, notifier, logger)
		r.Mount("/programs", programsfeature.Routes(programsHandler))

		// Registrations
		registrationsHandler := registrationsfeature.NewHandler(
			registrations, programs, students, teams, schedule, notifier, logger)
		r.Mount("/registrations", registrationsfeature.Routes(registrationsHandler))

		// Replacement requests
		replacementsHandler := replacementsfeature.NewHandler(
			replacements, registrations, programs, students, notifier, logger)
		r.Mount("/replacements", replacementsfeature.Routes(replacementsHandler))

		// Registration window
		scheduleHandler := schedulefeature.NewHandler(schedule, logger)
		r.Mount("/schedule", schedulefeature.Routes(scheduleHandler))
	})

	return r, nil
}
