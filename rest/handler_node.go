package rest

import (
	"net/http"
)

// HandleNodeCatalog serves the registered node types with outputs and config
// schemas; the workflow designer renders its palette from this.
func (s *Server) HandleNodeCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.factory.Catalog())
}
