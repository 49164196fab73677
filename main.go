package main

import (
	"context"
	"log"

	"VoChat/global"
	"VoChat/logger"
	mid "VoChat/middleware"
	chat "VoChat/module/chat"
	user "VoChat/module/user"
	"VoChat/service/gateway"
	"VoChat/service/mgo"
	"VoChat/service/storage"
	security "VoChat/tools/security"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := global.Load()
	global.ConfigIds()

	jwtOpts := security.DefaultOptions(cfg.JWTSecret)
	jwtOpts.TTL = cfg.JWTTTL

	// Document store is required; the presence mirror is optional.
	if err := mgo.Init(context.Background(), mgo.Config{URI: cfg.MongoURI, Database: cfg.MongoDB}); err != nil {
		log.Fatalf("mongo init failed: %v", err)
	}
	if err := storage.InitRedis(storage.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		log.Fatalf("redis init failed: %v", err)
	}
	if storage.GetRedis() == nil {
		logger.Info("presence mirror disabled (no REDIS_ADDR)")
	}

	gw := gateway.NewServer(gateway.Options{
		NodeID:         cfg.NodeID,
		SendQueue:      cfg.SendQueue,
		PresenceTTL:    cfg.PresenceTTL,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	defer gw.Close()

	userH := user.NewHandlers(jwtOpts)
	chatH := chat.NewHandlers(gw.Router())

	r := gin.New()
	r.Use(gin.Recovery(), mid.RequestID())

	r.GET("/ws", gw.HandleWS) // ws://host/ws?userId=<id>

	mid.POST(r, "/api/auth/signup", jwtOpts, userH.Signup, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/api/auth/login", jwtOpts, userH.Login, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/api/auth/logout", jwtOpts, userH.Logout, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/auth/check", jwtOpts, userH.Check, mid.RouteOpt{IsAuth: true})
	mid.PUT(r, "/api/auth/update-profile", jwtOpts, userH.UpdateProfile, mid.RouteOpt{IsAuth: true})

	mid.GET(r, "/api/messages/users", jwtOpts, chatH.SidebarUsers, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/messages/:id", jwtOpts, chatH.GetMessages, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/api/messages/:id", jwtOpts, chatH.SendMessage, mid.RouteOpt{IsAuth: true})

	logger.Infof("[HTTP] listening on %s node=%s", cfg.HTTPAddr, cfg.NodeID)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
