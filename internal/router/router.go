package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"diary-backend/internal/auth"
	"diary-backend/internal/config"
	"diary-backend/internal/handler"
	"diary-backend/internal/logging"
	"diary-backend/internal/middleware"
	"diary-backend/internal/service"
	"diary-backend/pkg/utils"
)

type Deps struct {
	Tokens  *auth.TokenService
	Auth    *service.AuthService
	Members *service.MemberService
	Logger  *logrus.Logger
}

// New builds the engine and its middleware chain once from the security mode.
// Nothing downstream looks at the mode again.
func New(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	cookies := handler.CookieSettings{
		Secure:   cfg.Security.CookieSecure,
		SameSite: handler.ParseSameSite(cfg.Security.SameSite),
		MaxAge:   deps.Tokens.RefreshTTL(),
	}
	policy := middleware.DefaultPolicy()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logging.Component(deps.Logger, "http")))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Authenticate(deps.Tokens, deps.Auth, policy, logging.Component(deps.Logger, "filter")))
	r.Use(policy.Enforce())

	authHandler := handler.NewAuthHandler(deps.Auth, cookies, logging.Component(deps.Logger, "auth"))
	memberHandler := handler.NewMemberHandler(deps.Members, logging.Component(deps.Logger, "member"))

	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "diary-backend",
			"mode":    cfg.Mode,
		})
	})
	r.GET("/error", func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Unexpected error")
	})

	r.POST("/reissue", authHandler.Reissue)

	api := r.Group("/api")
	api.POST("/reissue", authHandler.Reissue)

	member := api.Group("/member")
	{
		member.POST("/signup", authHandler.Signup)
		member.POST("/login", authHandler.Login)
		member.POST("/reissue", authHandler.Reissue)
		member.POST("/logout", authHandler.Logout)
		member.POST("/oauth2/google", authHandler.GoogleLogin)
		member.GET("/me", memberHandler.Me)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/members", memberHandler.List)
		admin.DELETE("/members/:id", memberHandler.Delete)
	}

	return r
}
