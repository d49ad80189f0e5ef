package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gshop/marketplace/internal/audit"
	auditdomain "github.com/gshop/marketplace/internal/audit/domain"
	"github.com/gshop/marketplace/internal/config"
	"github.com/gshop/marketplace/internal/invoice"
	invoicedomain "github.com/gshop/marketplace/internal/invoice/domain"
	"github.com/gshop/marketplace/internal/observability/metrics"
	"github.com/gshop/marketplace/internal/order"
	orderdomain "github.com/gshop/marketplace/internal/order/domain"
	"github.com/gshop/marketplace/internal/platformconfig"
	configdomain "github.com/gshop/marketplace/internal/platformconfig/domain"
	"github.com/gshop/marketplace/internal/product"
	productdomain "github.com/gshop/marketplace/internal/product/domain"
	"github.com/gshop/marketplace/internal/settlement"
	settlementdomain "github.com/gshop/marketplace/internal/settlement/domain"
	"github.com/gshop/marketplace/internal/transferlimit"
	transferdomain "github.com/gshop/marketplace/internal/transferlimit/domain"
	"github.com/gshop/marketplace/internal/verification"
	verificationdomain "github.com/gshop/marketplace/internal/verification/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	audit.Module,
	platformconfig.Module,
	product.Module,
	order.Module,
	invoice.Module,
	settlement.Module,
	verification.Module,
	transferlimit.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	configSvc       configdomain.Service
	productSvc      productdomain.Service
	orderSvc        orderdomain.Service
	invoiceSvc      invoicedomain.Issuer
	settlementSvc   settlementdomain.Engine
	transferSvc     transferdomain.Tracker
	verificationSvc verificationdomain.Service
	auditSvc        auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	ConfigSvc       configdomain.Service
	ProductSvc      productdomain.Service
	OrderSvc        orderdomain.Service
	InvoiceSvc      invoicedomain.Issuer
	SettlementSvc   settlementdomain.Engine
	TransferSvc     transferdomain.Tracker
	VerificationSvc verificationdomain.Service
	AuditSvc        auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		configSvc:       p.ConfigSvc,
		productSvc:      p.ProductSvc,
		orderSvc:        p.OrderSvc,
		invoiceSvc:      p.InvoiceSvc,
		settlementSvc:   p.SettlementSvc,
		transferSvc:     p.TransferSvc,
		verificationSvc: p.VerificationSvc,
		auditSvc:        p.AuditSvc,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Platform Config --------
	v1.GET("/platform-config", s.ListPlatformConfig)
	v1.GET("/platform-config/:key", s.GetPlatformConfig)
	v1.PUT("/platform-config/:key", s.SetPlatformConfig)

	// -------- Products --------
	v1.POST("/products", s.CreateProduct)
	v1.GET("/products/:id", s.GetProductByID)
	v1.PATCH("/products/:id/pricing", s.UpdateProductPricing)

	// -------- Orders --------
	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders/:id", s.GetOrderByID)
	v1.POST("/orders/:id/delivered", s.MarkOrderDelivered)

	// -------- Invoices --------
	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/:id", s.GetInvoiceByID)
	v1.POST("/invoices/:id/void", s.VoidInvoice)

	// -------- Transfers --------
	v1.POST("/transfers/check", s.CheckTransfer)
	v1.GET("/transfers/limits/:user_id", s.GetTransferLimit)

	// -------- Verifications --------
	v1.POST("/verifications", s.SubmitVerification)
	v1.GET("/verifications/:user_id", s.GetVerification)
	v1.POST("/verifications/:user_id/approve", s.ApproveVerification)
	v1.POST("/verifications/:user_id/reject", s.RejectVerification)
	v1.POST("/verifications/:user_id/downgrade", s.DowngradeVerification)

	// -------- Audit Logs --------
	v1.GET("/audit-logs", s.ListAuditLogs)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
