package main

import (
	"log"

	"user-backend/internal/bootstrap"
	"user-backend/internal/shared/config"
	"user-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	rpcAddr := server.Addr(cfg.RPCPort)
	go func() {
		log.Printf("Starting RPC server on %s", rpcAddr)
		if err := app.RPCRouter.Run(rpcAddr); err != nil {
			log.Fatalf("rpc server error: %v", err)
		}
	}()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)
	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
