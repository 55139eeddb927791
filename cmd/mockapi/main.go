package main

import (
	"hoteldesk/internal/mockapi/auth"
	"hoteldesk/internal/mockapi/handler"
	"hoteldesk/internal/mockapi/repository"
	"hoteldesk/pkg/app"
	"hoteldesk/pkg/config"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const ServiceName = "mockapi"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting hotel stand-in API")
	hotelHandler := initHandler(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		hotelHandler,
		handler.NewHealthHandler(cfg.Log, hotelHandler.StoreChecks()...),
		handler.APIPrefix+handler.TokenPath,
		handler.APIPrefix+handler.TokenRefreshPath,
		handler.APIPrefix+handler.RegisterPath,
	)
	serverApp.Run()
}

func initHandler(cfg *config.Config) *handler.Handler {
	users, err := auth.NewMemoryUserRepository(bcrypt.DefaultCost, auth.DemoUsers()...)
	if err != nil {
		cfg.Log.Fatal("Failed to seed demo users", "error", err)
	}
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hotel := repository.NewMemoryHotelRepository(time.Now)

	cfg.Log.Info("Stand-in stores initialized",
		"demo_users", len(auth.DemoUsers()),
		"access_token_ttl", cfg.AccessTokenTTL,
	)
	return handler.NewHandler(users, tokens, hotel, cfg.Log.Component("handler"))
}
