package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/holoverse/presence/internal/domain"
)

// IdentityMiddleware resolves the connection to a user before any room
// event can be sent. It stands in for the external auth collaborator:
// identity is held in the cookie session and minted for first-time
// visitors, so a deployment fronted by real auth only has to populate the
// same session keys.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		uid, _ := sess.Get("uid").(string)
		name, _ := sess.Get("name").(string)

		if uid == "" {
			if name == "" {
				name = c.Query("name")
			}
			if name == "" {
				name = "guest"
			}
			user, err := domain.NewUser(name)
			if err != nil {
				user, _ = domain.NewUser("guest")
			}
			uid = string(user.ID)
			name = user.Name
			sess.Set("uid", uid)
			sess.Set("name", name)
			_ = sess.Save()
		}

		c.Set("user_id", uid)
		c.Set("user_name", name)
		c.Next()
	}
}
