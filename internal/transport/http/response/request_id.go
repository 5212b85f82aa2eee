package response

import (
	"net/http"

	reqctx "github.com/baechuer/bridge-auth/internal/pkg/context"
)

func RequestIDFromContext(r *http.Request) string {
	return reqctx.GetRequestID(r.Context())
}
