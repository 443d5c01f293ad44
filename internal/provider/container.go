package provider

import (
	"github.com/shopora/internal/authz"
	"github.com/shopora/internal/cache"
	"github.com/shopora/internal/config"
	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/payment"
	"github.com/shopora/internal/queue"
	"github.com/shopora/internal/repository"
	"github.com/shopora/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config         *config.Config
	QueueClient    *queue.Client
	PaymentGateway payment.Gateway

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	OrderRepo    *repository.GormOrderRepository
	DeliveryRepo *repository.GormDeliveryRepository
	RefundRepo   *repository.GormRefundRepository
	ProductRepo  repository.ProductRepository
	CartRepo     *repository.GormCartRepository
	CategoryRepo repository.CategoryRepository
	WishlistRepo repository.WishlistRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	EmailService    *service.EmailService
	CaptchaService  *service.CaptchaService
	ProductService  *service.ProductService
	CategoryService *service.CategoryService
	CartService     *service.CartService
	WishlistService *service.WishlistService
	OrderService    *service.OrderService
	DeliveryService *service.DeliveryService
	RefundService   *service.RefundService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化支付网关
	c.initPaymentGateway()

	// 2. 初始化 Repositories
	c.initRepositories()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initPaymentGateway() {
	gatewayCfg := &payment.Config{
		BaseURL:   c.Config.Payment.BaseURL,
		AuthToken: c.Config.Payment.AuthToken,
	}
	gateway, err := payment.NewHTTPGateway(gatewayCfg)
	if err != nil {
		logger.Warnw("provider_init_payment_gateway_failed", "error", err)
		return
	}
	c.PaymentGateway = gateway
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.DeliveryRepo = repository.NewDeliveryRepository(db)
	c.RefundRepo = repository.NewRefundRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.WishlistRepo = repository.NewWishlistRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.QueueClient)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.WishlistService = service.NewWishlistService(c.WishlistRepo, c.ProductRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CartRepo, c.DeliveryRepo, c.PaymentGateway, c.QueueClient)
	c.DeliveryService = service.NewDeliveryService(c.DeliveryRepo, c.OrderRepo, c.QueueClient)
	c.RefundService = service.NewRefundService(c.RefundRepo, c.OrderRepo, c.ProductRepo, c.QueueClient)
}
