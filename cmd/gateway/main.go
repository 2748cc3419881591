package main

import (
	"context"
	"log"

	"github.com/mkurbatov/landledger/internal/gateway"
	"github.com/mkurbatov/landledger/internal/gateway/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := gateway.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
