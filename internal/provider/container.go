package provider

import (
	"github.com/kwamkid/joolz-factory-sub002/internal/cache"
	"github.com/kwamkid/joolz-factory-sub002/internal/config"
	"github.com/kwamkid/joolz-factory-sub002/internal/identity"
	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/queue"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Verifier    identity.Verifier

	// Repositories
	OrderRepo       repository.OrderRepository
	CustomerRepo    repository.CustomerRepository
	AddressRepo     repository.AddressRepository
	ChatContactRepo repository.ChatContactRepository
	BranchRepo      repository.BranchRepository
	ProductRepo     repository.ProductRepository
	VariationRepo   repository.VariationRepository
	BatchRepo       repository.BatchRepository
	StockRepo       repository.StockRepository
	MetricsRepo     repository.MetricsRepository

	// Services
	OrderService    *service.OrderService
	CustomerService *service.CustomerService
	FollowUpService *service.FollowUpService
	AgingService    *service.AgingService
	ProductService  *service.ProductService
	BatchService    *service.BatchService
	StockService    *service.StockService
	BranchService   *service.BranchService
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
		Verifier:    identity.NewHTTPVerifier(cfg.Identity.VerifyURL, cfg.Identity.TimeoutMS),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.ChatContactRepo = repository.NewChatContactRepository(db)
	c.BranchRepo = repository.NewBranchRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariationRepo = repository.NewVariationRepository(db)
	c.BatchRepo = repository.NewBatchRepository(db)
	c.StockRepo = repository.NewStockRepository(db)
	c.MetricsRepo = repository.NewMetricsRepository(db)
}

func (c *Container) initServices() {
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CustomerRepo, c.AddressRepo, c.BranchRepo, c.Config.Order.VATRate, c.Config.Order.VATMode, c.Config.Order.NumberPrefix)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo, c.AddressRepo, c.ChatContactRepo, c.BranchRepo, c.MetricsRepo)
	c.FollowUpService = service.NewFollowUpService(c.CustomerRepo, c.MetricsRepo)
	c.AgingService = service.NewAgingService(c.CustomerRepo, c.MetricsRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.VariationRepo)
	c.BatchService = service.NewBatchService(c.BatchRepo, c.ProductRepo, c.VariationRepo, c.StockRepo, c.QueueClient)
	c.StockService = service.NewStockService(c.StockRepo, c.VariationRepo, c.ProductRepo, c.QueueClient)
	c.BranchService = service.NewBranchService(c.BranchRepo)
}
