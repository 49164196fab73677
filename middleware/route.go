package middleware

import (
	security "VoChat/tools/security"

	"github.com/gin-gonic/gin"
)

// RouteOpt tags a route as needing a verified session or not.
type RouteOpt struct {
	IsAuth bool
}

func POST(r gin.IRoutes, path string, opts security.Options, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path, Auth(opts), handler)
	} else {
		r.POST(path, handler)
	}
}

func GET(r gin.IRoutes, path string, opts security.Options, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path, Auth(opts), handler)
	} else {
		r.GET(path, handler)
	}
}

func PUT(r gin.IRoutes, path string, opts security.Options, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.PUT(path, Auth(opts), handler)
	} else {
		r.PUT(path, handler)
	}
}
