package main

import (
	"context"
	"fmt"

	"github.com/govalues/decimal"
	"github.com/nkimemia/sokopay/internal/adapter/client/daraja"
	"github.com/nkimemia/sokopay/internal/adapter/config"
	"github.com/nkimemia/sokopay/internal/adapter/handler/http"
	"github.com/nkimemia/sokopay/internal/adapter/logger"
	"github.com/nkimemia/sokopay/internal/adapter/metrics"
	"github.com/nkimemia/sokopay/internal/adapter/storage"
	"github.com/nkimemia/sokopay/internal/adapter/storage/repository"
	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	defer db.Close()

	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("repo creating error", zap.Error(err))
		return
	}

	err = repo.SeedProducts(ctx, defaultCatalog())
	if err != nil {
		log.Error("product seeding error", zap.Error(err))
		return
	}

	gateway, err := daraja.NewClient(conf.Daraja, log.Named("Daraja"))
	if err != nil {
		log.Error("gateway client creating error", zap.Error(err))
		return
	}

	minAmount, err := decimal.Parse(conf.App.MinAmount)
	if err != nil {
		log.Error("minimum amount parsing error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, gateway, minAmount, conf.Daraja.ShortCode, log.Named("Service"))
	if err != nil {
		log.Error("service creating error", zap.Error(err))
		return
	}

	m := metrics.NewMetrics()

	checkoutHandler, err := http.NewCheckoutHandler(svc, m, log.Named("Checkout handler"))
	if err != nil {
		log.Error("checkout handler creating error", zap.Error(err))
		return
	}
	callbackHandler, err := http.NewCallbackHandler(svc, m, log.Named("Callback handler"))
	if err != nil {
		log.Error("callback handler creating error", zap.Error(err))
		return
	}
	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	productHandler, err := http.NewProductHandler(svc, log.Named("Product handler"))
	if err != nil {
		log.Error("product handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.App, checkoutHandler, callbackHandler, orderHandler, productHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}

func defaultCatalog() []*domain.Product {
	price := func(v int64) decimal.Decimal {
		d, _ := decimal.New(v, 0)
		return d
	}
	return []*domain.Product{
		{Name: "Airtime 100", Price: price(100), Description: "Airtime top-up voucher"},
		{Name: "Data bundle 1GB", Price: price(250), Description: "1GB mobile data, valid 30 days"},
		{Name: "SMS bundle", Price: price(50), Description: "500 SMS, valid 7 days"},
	}
}
