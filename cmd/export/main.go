// Command export dumps all payments to a CSV file. It replaces the old
// cron-driven JSON export: run it from a scheduler (cron, systemd timer)
// pointed at the same database as the server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"churpay/internal/config"
	"churpay/internal/db"
	"churpay/internal/repository"
	"churpay/internal/service"
)

func main() {
	out := flag.String("out", "payments.csv", "output file path")
	timeout := flag.Duration("timeout", 2*time.Minute, "export timeout")
	flag.Parse()

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	paymentRepo := repository.NewPaymentRepository(gormDB)
	ipnEventRepo := repository.NewIpnEventRepository(gormDB)
	paymentService := service.NewPaymentService(paymentRepo, ipnEventRepo)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create %s: %v", *out, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := paymentService.WriteCSV(ctx, f); err != nil {
		log.Fatalf("export: %v", err)
	}
	log.Printf("exported payments to %s", *out)
}
