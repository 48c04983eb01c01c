package servers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/previewlabs/preview-backend/pkg/services"
)

type Server struct {
	Router         *gin.Engine
	PostgresDB     *gorm.DB
	PreviewService *services.PreviewService
}

func (s *Server) Start(port string) error {
	return s.Router.Run(":" + port)
}

func (s *Server) Use(middleware gin.HandlerFunc) {
	s.Router.Use(middleware)
}

func NewServer(db *gorm.DB, previewService *services.PreviewService) *Server {
	app := gin.Default()

	return &Server{
		Router:         app,
		PostgresDB:     db,
		PreviewService: previewService,
	}
}
