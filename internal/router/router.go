package router

import (
	"fmt"
	"strings"

	"github.com/shopora/internal/cache"
	"github.com/shopora/internal/config"
	"github.com/shopora/internal/constants"
	adminhandlers "github.com/shopora/internal/http/handlers/admin"
	publichandlers "github.com/shopora/internal/http/handlers/public"
	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 购物车（登录用户或携带 X-Session-Id 的游客）
		cart := apiV1.Group("/cart")
		cart.Use(OptionalUserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			cart.GET("", publicHandler.GetCart)
			cart.POST("/items", publicHandler.UpsertCartItem)
			cart.DELETE("/items/:product_id", publicHandler.RemoveCartItem)
			cart.DELETE("", publicHandler.ClearCart)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/wishlist", publicHandler.ListWishlist)
			user.POST("/wishlist/items", publicHandler.AddWishlistItem)
			user.DELETE("/wishlist/items/:product_id", publicHandler.RemoveWishlistItem)
			user.POST("/checkout/complete", publicHandler.CompleteCheckout)
			user.GET("/orders", publicHandler.ListMyOrders)
			user.GET("/orders/:id", publicHandler.GetMyOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelMyOrder)
			user.POST("/refunds", publicHandler.RequestRefund)
			user.GET("/refunds", publicHandler.ListMyRefunds)
			user.GET("/refunds/:id", publicHandler.GetMyRefund)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetAdminProfile)
				authorized.PUT("/password", adminHandler.ChangeAdminPassword)

				// 商品管理
				authorized.GET("/products", adminHandler.ListProducts)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)
				authorized.POST("/products/:id/discount", adminHandler.ApplyProductDiscount)
				authorized.DELETE("/products/:id/discount", adminHandler.RemoveProductDiscount)

				// 分类管理
				authorized.GET("/categories", adminHandler.ListCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 订单管理
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)

				// 配送管理
				authorized.GET("/deliveries", adminHandler.ListDeliveries)
				authorized.GET("/deliveries/:id", adminHandler.GetDelivery)
				authorized.PATCH("/deliveries/:id", adminHandler.UpdateDelivery)

				// 退款管理
				authorized.GET("/refunds", adminHandler.ListRefunds)
				authorized.GET("/refunds/:id", adminHandler.GetRefund)
				authorized.POST("/refunds/:id/decision", adminHandler.DecideRefund)

				// 用户管理
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.GET("/users/:id", adminHandler.GetUser)

				// 角色管理
				authorized.GET("/roles", adminHandler.ListRoles)
				authorized.GET("/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
