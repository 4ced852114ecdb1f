// Command ordersctl prints the operator order queue straight from storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"sobgamecoin/internal/config"
	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
	"sobgamecoin/internal/infrastructure/kvstore"
	"sobgamecoin/internal/infrastructure/logger"
	"sobgamecoin/internal/order/repository"
	"sobgamecoin/internal/order/service"
)

func main() {
	status := flag.String("status", string(domain.OrderStatusPendingVerification), "status filter: all or an order status")
	search := flag.String("search", "", "match order id, verification number, customer name or phone")
	stats := flag.Bool("stats", false, "print queue totals instead of orders")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg.Log.Format = "console"
	zapLogger, err := logger.New(cfg.Log, "ordersctl")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, closeStore, err := kvstore.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("opening storage", zap.Error(err))
	}
	defer closeStore()

	queue := service.NewQueueService(repository.NewKVOrderRepository(store, zapLogger))

	if *stats {
		s, err := queue.Stats(ctx)
		if err != nil {
			zapLogger.Fatal("computing stats", zap.Error(err))
		}
		if err := renderStats(os.Stdout, s); err != nil {
			zapLogger.Fatal("rendering stats", zap.Error(err))
		}
		return
	}

	orders, err := queue.List(ctx, dto.OrderFilter{Status: *status, Search: *search})
	if err != nil {
		zapLogger.Fatal("listing orders", zap.Error(err))
	}
	if err := renderOrders(os.Stdout, orders); err != nil {
		zapLogger.Fatal("rendering orders", zap.Error(err))
	}
}

func renderOrders(w io.Writer, orders []domain.Order) error {
	table := tablewriter.NewWriter(w)
	table.Header("Order", "Verification", "Customer", "Phone", "Payment", "Total", "Status", "Placed")
	for _, o := range orders {
		row := []string{
			o.ID,
			o.VerificationNumber,
			o.CustomerInfo.Name,
			o.CustomerInfo.Phone,
			o.PaymentMethod.DisplayName(),
			o.Total.String(),
			string(o.Status),
			o.CreatedAt.Local().Format("2006-01-02 15:04"),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d order(s)\n", len(orders))
	return err
}

func renderStats(w io.Writer, s *dto.OrderStats) error {
	table := tablewriter.NewWriter(w)
	table.Header("Pending", "Approved", "Approved revenue")
	if err := table.Append([]string{
		fmt.Sprint(s.PendingCount),
		fmt.Sprint(s.ApprovedCount),
		s.RevenueDisplay,
	}); err != nil {
		return err
	}
	return table.Render()
}
