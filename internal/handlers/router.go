package handlers

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	"qa-forum/internal/middleware"
	"qa-forum/internal/models"
)

// Router bundles the handlers and middleware served by the API
type Router struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Trust    *TrustHandler
	Curation *CurationHandler
	Reviewer *ReviewerHandler
	Forum    *ForumHandler
	Audit    *AuditHandler
	Health   *HealthHandler

	AuthMw *middleware.AuthMiddleware
	RBACMw *middleware.RBACMiddleware
}

// Handler registers all routes and wraps them in the global middleware chain
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST "+APIBasePath+"/auth/login", rt.Auth.Login)
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Any authenticated user
	rt.authenticated(mux, "GET /users/me", rt.Auth.Me)
	rt.authenticated(mux, "GET /reviewers", rt.Reviewer.ListProfiles)
	rt.authenticated(mux, "GET /reviewers/{userID}", rt.Reviewer.GetProfile)
	rt.authenticated(mux, "POST /questions/{questionID}/answers", rt.Forum.PostAnswer)

	// Students
	rt.withRole(mux, "GET /trust", rt.Trust.GetTrust, models.RoleStudent)
	rt.withRole(mux, "PUT /trust/{reviewerID}", rt.Trust.SetTrust, models.RoleStudent)
	rt.withRole(mux, "DELETE /trust/{reviewerID}", rt.Trust.RemoveTrust, models.RoleStudent)
	rt.withRole(mux, "POST /curation/reload", rt.Curation.Reload, models.RoleStudent)
	rt.withRole(mux, "GET /curation/questions/{questionID}", rt.Curation.Curate, models.RoleStudent)
	rt.withRole(mux, "POST /curation/check-updates", rt.Curation.CheckUpdates, models.RoleStudent)
	rt.withRole(mux, "POST /reviewer-requests", rt.Reviewer.SubmitRequest, models.RoleStudent)
	rt.withRole(mux, "GET /reviewer-requests/mine", rt.Reviewer.MyRequests, models.RoleStudent)
	rt.withRole(mux, "POST /questions", rt.Forum.PostQuestion, models.RoleStudent)
	rt.withRole(mux, "PUT /answers/{answerID}/accepted", rt.Forum.SetAccepted, models.RoleStudent)

	// Instructors
	rt.withRole(mux, "GET /reviewer-requests/pending", rt.Reviewer.ListPending, models.RoleInstructor)
	rt.withRole(mux, "POST /reviewer-requests/{studentID}/process", rt.Reviewer.ProcessRequest, models.RoleInstructor)

	// Reviewers
	rt.withRole(mux, "PUT /reviewers/me/experience", rt.Reviewer.UpdateExperience, models.RoleReviewer)
	rt.withRole(mux, "POST /answers/{answerID}/reviews", rt.Forum.ReviewAnswer, models.RoleReviewer)

	// Admins
	rt.withRole(mux, "GET /admin/roles", rt.Users.ListRoles, models.RoleAdmin)
	rt.withRole(mux, "GET /admin/users", rt.Users.ListUsers, models.RoleAdmin)
	rt.withRole(mux, "POST /admin/users", rt.Users.CreateUser, models.RoleAdmin)
	rt.withRole(mux, "GET /admin/users/{userID}/roles", rt.Users.GetUserRoles, models.RoleAdmin)
	rt.withRole(mux, "PUT /admin/users/{userID}/roles", rt.Users.AssignRoles, models.RoleAdmin)
	rt.withRole(mux, "GET /admin/audit-logs", rt.Audit.ListAuditLogs, models.RoleAdmin)

	return middleware.LoggingMiddleware(middleware.SecurityHeaders(mux))
}

// authenticated registers "METHOD /path" under the API base path behind authentication
func (rt *Router) authenticated(mux *http.ServeMux, route string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(route, " ")
	mux.Handle(method+" "+APIBasePath+path, rt.AuthMw.Authenticate(h))
}

func (rt *Router) withRole(mux *http.ServeMux, route string, h http.HandlerFunc, role string) {
	method, path, _ := strings.Cut(route, " ")
	mux.Handle(method+" "+APIBasePath+path,
		rt.AuthMw.Authenticate(
			rt.RBACMw.RequireRole(role)(h),
		),
	)
}
