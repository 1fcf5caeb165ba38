package generic

import "github.com/gin-gonic/gin"

// Server is the HTTP surface shared by every API group.
type Server struct {
	Router  *gin.Engine
	Port    string
	Methods []string
}
