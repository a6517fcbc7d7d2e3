package main

import (
	"context"
	"fmt"

	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/config"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/internal/infrastructure/database"
	"github.com/sangkips/tableside-api/internal/infrastructure/memory"
	"github.com/sangkips/tableside-api/internal/infrastructure/messaging"
	infraRepo "github.com/sangkips/tableside-api/internal/infrastructure/repository"
	"github.com/sangkips/tableside-api/internal/presentation/http/handler"
	"github.com/sangkips/tableside-api/internal/presentation/http/routes"
	"github.com/sangkips/tableside-api/pkg/logger"
	"github.com/sangkips/tableside-api/pkg/payment"
	"github.com/sangkips/tableside-api/pkg/printer"
	"github.com/sangkips/tableside-api/pkg/utils"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// storage is one repository backend
type storage struct {
	tx          repository.Transactor
	orders      repository.OrderRepository
	tables      repository.TableRepository
	outlets     repository.OutletRepository
	bills       repository.BillRepository
	customers   repository.CustomerRepository
	duePayments repository.DuePaymentRepository
	idempotency repository.IdempotencyRepository
}

// application is the wired process
type application struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	storage *storage
	broker  *messaging.Connection
	jwt     *utils.JWTManager

	orders   *service.OrderService
	tables   *service.TableService
	bills    *service.BillService
	ledger   *service.LedgerService
	payments *service.PaymentService
	poller   *service.PaymentPoller
	printer  *service.PrinterService
	reports  *service.ReportService
	settings *service.SettingsService
}

// bootstrap loads configuration and wires every service. With watch set,
// online orders are polled in the background until ctx is done.
func bootstrap(ctx context.Context, c *cli.Context, watch bool) (*application, error) {
	cfg := config.Load()
	if driver := c.String("storage"); driver != "" {
		cfg.Storage.Driver = driver
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	a := &application{
		cfg: cfg,
		log: log,
		jwt: utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer),
	}

	if err := a.openStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var publisher event.Publisher = event.Nop{}
	if cfg.RabbitMQ.URL != "" {
		a.broker, err = messaging.New(cfg.RabbitMQ, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		publisher = messaging.NewPublisher(a.broker, cfg.RabbitMQ.Exchange, log)
	} else {
		log.Info("RABBITMQ_URL not set, domain events are not published")
	}

	provider, err := payment.NewProvider(cfg.Payment.Provider)
	if err != nil {
		a.Close()
		return nil, err
	}

	thermal, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn("failed to initialize printer, receipts will not be printed", zap.Error(err))
		thermal = printer.NewBuffer()
	}

	st := a.storage
	a.payments = service.NewPaymentService(st.orders, provider, publisher, cfg.Billing.Currency, log)
	if watch {
		a.poller = service.NewPaymentPoller(ctx, a.payments, cfg.Payment.PollInterval, cfg.Payment.PollAttempts, log)
	}
	a.orders = service.NewOrderService(st.orders, st.tables, a.payments, a.poller, publisher, log)
	a.tables = service.NewTableService(st.tables, st.orders)
	a.bills = service.NewBillService(st.tx, st.bills, st.orders, st.customers, st.outlets, publisher, cfg.Billing.DefaultTaxPercent, log)
	a.ledger = service.NewLedgerService(st.tx, st.customers, st.duePayments, st.bills, publisher, log)
	a.printer = service.NewPrinterService(thermal, st.bills, st.outlets, cfg.Printer.Type, cfg.Printer.Width, log)
	a.reports = service.NewReportService(st.bills, st.outlets, a.printer, log)
	a.settings = service.NewSettingsService(st.outlets, log)

	return a, nil
}

func (a *application) openStorage(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		a.storage = &storage{
			tx:          store,
			orders:      store.Orders(),
			tables:      store.Tables(),
			outlets:     store.Outlets(),
			bills:       store.Bills(),
			customers:   store.Customers(),
			duePayments: store.DuePayments(),
			idempotency: store.Idempotency(),
		}
		return seedMemory(ctx, store, a.cfg.Seed, a.log)
	case "postgres", "":
		db, err := database.NewPostgresDB(&a.cfg.Database, a.log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		a.storage = &storage{
			tx:          infraRepo.NewTransactor(db),
			orders:      infraRepo.NewOrderRepository(db),
			tables:      infraRepo.NewTableRepository(db),
			outlets:     infraRepo.NewOutletRepository(db),
			bills:       infraRepo.NewBillRepository(db),
			customers:   infraRepo.NewCustomerRepository(db),
			duePayments: infraRepo.NewDuePaymentRepository(db),
			idempotency: infraRepo.NewIdempotencyRepository(db),
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q (use postgres or memory)", a.cfg.Storage.Driver)
	}
}

// seedMemory creates the configured outlet and its tables in a fresh store
func seedMemory(ctx context.Context, store *memory.Store, cfg config.SeedConfig, log *zap.Logger) error {
	outlet, err := database.SeedOutlet(cfg)
	if err != nil {
		return err
	}
	if outlet == nil {
		log.Warn("memory storage started without an outlet; set OUTLET_SLUG or OUTLET_NAME")
		return nil
	}
	if err := store.Outlets().Create(ctx, outlet); err != nil {
		return err
	}
	for i := 1; i <= cfg.TableCount; i++ {
		store.PutTable(database.SeedTable(outlet.ID, i))
	}
	log.Info("memory store seeded",
		zap.String("outlet", outlet.Slug),
		zap.String("outlet_id", outlet.ID.String()),
		zap.Int("tables", cfg.TableCount))
	return nil
}

func (a *application) handlers() *routes.Handlers {
	return &routes.Handlers{
		Order:    handler.NewOrderHandler(a.orders),
		Table:    handler.NewTableHandler(a.tables),
		Bill:     handler.NewBillHandler(a.bills),
		Customer: handler.NewCustomerHandler(a.ledger),
		Payment:  handler.NewPaymentHandler(a.payments, a.cfg.Payment.WebhookSecret),
		Printer:  handler.NewPrinterHandler(a.printer),
		Report:   handler.NewReportHandler(a.reports),
		Settings: handler.NewSettingsHandler(a.settings),
	}
}

// Close releases the broker and database connections
func (a *application) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.log.Warn("failed to close RabbitMQ connection", zap.Error(err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}
