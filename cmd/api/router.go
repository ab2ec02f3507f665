package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ashkeyz/inkwell/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activate", app.activateUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))

	// post service. The id lookup lives under its own prefix because
	// httprouter rejects a wildcard next to the featured and slug segments.
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requirePermission(app.createPostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodGet, "/v1/posts/featured", app.getFeaturedPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/slug/:slug", app.getPostBySlugHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/id/:id", app.getPostHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/posts/id/:id", app.requirePermission(app.updatePostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/id/:id", app.requirePermission(app.deletePostHandler, userservice.PermissionWritePost))

	// category service
	router.HandlerFunc(http.MethodGet, "/v1/categories", app.listCategoriesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/categories/:slug", app.getCategoryBySlugHandler)
	router.HandlerFunc(http.MethodPost, "/v1/categories", app.requirePermission(app.createCategoryHandler, userservice.PermissionWritePost))

	return app.recoverPanic(app.enableCORS(app.logRequest(app.authenticate(router))))
}
