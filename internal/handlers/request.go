package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/requestdata"
)

var errNoIdentity = errors.New("no user identity on request")

// currentUserID pulls the caller's identity set by the identity middleware.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, errNoIdentity
	}
	return rd.UserID, nil
}
