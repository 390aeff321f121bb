package tools

import (
	"encoding/json"
	"net/http"

	"github.com/weaver-labs/weaver/internal/tools"
)

// SchemaHandler serves the tool catalog as JSON, in presentation order.
type SchemaHandler struct {
	Definitions []tools.Definition
}

// NewSchemaHandler serves the fixed catalog.
func NewSchemaHandler() SchemaHandler {
	return SchemaHandler{Definitions: tools.Catalog()}
}

// ServeHTTP renders schemas.
func (h SchemaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Definitions)
}
