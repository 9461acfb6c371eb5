package validators

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
)

// PathInt64 parses a positive integer path parameter.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a positive integer")
	}
	return value, nil
}
