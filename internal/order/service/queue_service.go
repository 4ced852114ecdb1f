package service

import (
	"context"
	"strings"

	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
)

type OrderLister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type QueueService struct {
	orders OrderLister
}

func NewQueueService(orders OrderLister) *QueueService {
	return &QueueService{orders: orders}
}

// List returns the orders matching filter, newest first.
func (s *QueueService) List(ctx context.Context, filter dto.OrderFilter) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterOrders(orders, filter), nil
}

func (s *QueueService) Stats(ctx context.Context) (*dto.OrderStats, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(orders)
	return &stats, nil
}

func FilterOrders(orders []domain.Order, filter dto.OrderFilter) []domain.Order {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		if !matchesStatus(o, filter.Status) {
			continue
		}
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchesStatus(o domain.Order, status string) bool {
	switch status {
	case "", dto.FilterAll:
		return true
	case string(domain.OrderStatusPendingVerification):
		return o.AwaitingApproval()
	}
	return string(o.Status) == status
}

func matchesSearch(o domain.Order, search string) bool {
	return strings.Contains(strings.ToLower(o.ID), search) ||
		strings.Contains(strings.ToLower(o.VerificationNumber), search) ||
		strings.Contains(strings.ToLower(o.CustomerInfo.Name), search) ||
		strings.Contains(o.CustomerInfo.Phone, search)
}

func ComputeStats(orders []domain.Order) dto.OrderStats {
	var stats dto.OrderStats
	for _, o := range orders {
		if o.AwaitingApproval() {
			stats.PendingCount++
		}
		if o.AdminApproved {
			stats.ApprovedCount++
			stats.ApprovedRevenue += o.Total
		}
	}
	stats.RevenueDisplay = stats.ApprovedRevenue.String()
	return stats
}
