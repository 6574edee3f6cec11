package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/service"
)

// newTestRouter builds the full route table around a (possibly partial)
// service aggregate.
func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}
