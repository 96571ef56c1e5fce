package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "consignment-manager/internal/adapters/web"
	"consignment-manager/internal/ai"
	"consignment-manager/internal/app"
	"consignment-manager/internal/core"
	"consignment-manager/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	clientService := core.NewClientService(pool)
	productService := core.NewProductService(pool)
	userService := core.NewUserService(pool)
	clientStockService := core.NewClientStockService(pool)
	stockCountService := core.NewStockCountService(pool)
	consignmentService := core.NewConsignmentService(pool, clientStockService, stockCountService)
	inventoryService := core.NewInventoryService(pool)
	dashboardService := core.NewDashboardService(clientService, productService, consignmentService, stockCountService)

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, count sheet parsing disabled")
	}

	svc := app.NewAppService(
		clientService, productService, userService,
		consignmentService, clientStockService, stockCountService,
		inventoryService, dashboardService, agent,
	)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
