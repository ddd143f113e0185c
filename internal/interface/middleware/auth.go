package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devlinkhq/devlink/pkg/helpers"
	"github.com/devlinkhq/devlink/pkg/response"
)

// CtxUserIDKey is the Gin context key carrying the authenticated user id.
const CtxUserIDKey = "userID"

// TokenHeader is the request header carrying the signed token. The
// header name is the wire contract existing clients rely on.
const TokenHeader = "x-auth-token"

// Auth is the request gate: it verifies the header-carried token and
// injects the asserted identity into the request context. It runs once
// per guarded request, does no I/O, and never retries. Callers are not
// told whether a rejected token was expired or forged.
func Auth(codec *helpers.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "no credential supplied", nil)
			return
		}
		claims, err := codec.Verify(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "credential not valid", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.User.ID)
		c.Next()
	}
}
