package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const guestKey = "guest_id"

// GuestID reads the guest cookie. With issue set, guests without one get a
// fresh id; signed-in callers never do.
func GuestID(cookies Cookies, issue bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookies.Guest)
		if _, err := uuid.Parse(id); err != nil {
			id = ""
		}
		if id == "" && issue && CallerFrom(c) == nil {
			id = uuid.NewString()
			cookies.set(c, cookies.Guest, id, cookies.GuestTTL)
		}
		if id != "" {
			c.Set(guestKey, id)
			requestData(c).GuestID = id
		}
		c.Next()
	}
}

// GuestIDFrom returns the guest id of the request, or "".
func GuestIDFrom(c *gin.Context) string {
	return c.GetString(guestKey)
}
