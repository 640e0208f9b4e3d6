package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseUintParam reads a non-negative integer path parameter, writing a 400 on failure.
func ParseUintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		BadRequestResponse(c, "Invalid "+name+" format")
		return 0, false
	}
	return v, true
}

// ParseIndexParam reads a bet index path parameter.
func ParseIndexParam(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v < 0 {
		BadRequestResponse(c, "Invalid "+name+" format")
		return 0, false
	}
	return v, true
}
