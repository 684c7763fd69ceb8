package main

import (
	"log"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/config"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/handler"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/infra/db"
	infraRepo "github.com/Oluwaseg/shuriken-store-sub000/internal/infra/repository"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/notification"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/payment"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/server"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/usecase"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Paystackクライアント
	gateway := payment.NewPaystackClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)

	//確認メール（SMTP未設定なら送らない）
	var mailer notification.Mailer
	if m, err := notification.NewSMTPMailer(cfg); err != nil {
		log.Printf("mailer disabled: %v", err)
	} else {
		mailer = m
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, validator.NewAuthValidator(userRepo), cfg.JWTSecret)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, txManager)
	checkoutUC := usecase.NewCheckoutUsecase(userRepo, cartRepo, cartUC)
	paymentUC := usecase.NewPaymentUsecase(
		userRepo, cartRepo, cartRepo, productRepo,
		orderRepo, orderItemRepo, txManager,
		gateway, mailer,
		usecase.UUIDReferenceGenerator{},
		cfg.PaymentCallback,
	)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, orderItemRepo, txManager)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Payment:      handler.NewPaymentHandler(paymentUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
	}

	srv := server.New(cfg, handlers)
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
