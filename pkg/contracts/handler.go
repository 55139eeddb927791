package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a group of stand-in API routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
